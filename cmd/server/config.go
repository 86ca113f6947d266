package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
)

type Config struct {
	Host             string        `env:"HOST,default=0.0.0.0"`
	Port             int           `env:"PORT,default=2323" validate:"gte=1,lte=65535"`
	LogLevel         string        `env:"LOG_LEVEL,default=INFO"`
	HistoryFilepath  string        `env:"HISTORY_FILEPATH,default=chat_log.txt" validate:"required"`
	WriteTimeout     time.Duration `env:"WRITE_TIMEOUT,default=5s"`
	MetricInterval   time.Duration `env:"METRIC_INTERVAL,default=30s"`
	RestartInterval  time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	AdmissionMode    string        `env:"ADMISSION_MODE,default=lan" validate:"oneof=open lan geo"`
	AllowedCountries string        `env:"GEO_ALLOWED_COUNTRIES,default=CH"`
	GeoLookupTimeout time.Duration `env:"GEO_LOOKUP_TIMEOUT,default=3s"`
	CensoredWords    string        `env:"CENSORED_WORDS"`
	CensoredChar     string        `env:"CENSORED_CHARACTER,default=*"`
}

func (c Config) censoredWords() []string {
	return splitCSV(c.CensoredWords)
}

func (c Config) countries() []string {
	return splitCSV(c.AllowedCountries)
}

func splitCSV(s string) []string {
	parts := lo.Map(strings.Split(s, ","), func(part string, _ int) string {
		return strings.TrimSpace(part)
	})
	return lo.Filter(parts, func(part string, _ int) bool {
		return part != ""
	})
}

// characterRune enforces that the replacement setting is one character.
func characterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf("CENSORED_CHARACTER must be a single character, got %q", str)
	}
	return r[0], nil
}
