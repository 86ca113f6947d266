package main

import "time"

type Config struct {
	ServerAddress string        `env:"CHAT_SERVER_ADDR,default=localhost:2323"`
	Bots          int           `env:"BOTS,default=10" validate:"gte=1"`
	ActionRate    time.Duration `env:"ACTION_RATE,default=5s"`
	Duration      time.Duration `env:"DURATION,default=1m"`
	Stagger       time.Duration `env:"STAGGER,default=50ms"`
	Unstable      bool          `env:"UNSTABLE,default=false"`
	Colours       bool          `env:"COLOURS,default=true"`
	LogLevel      string        `env:"LOG_LEVEL,default=INFO"`
}
