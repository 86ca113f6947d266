package domain

import (
	"math/rand"
	"regexp"
	"time"
)

// Raw ANSI sequences sent on the wire. Clients are plain telnet-style
// terminals, so these are emitted verbatim rather than through a
// terminal-detection library.
const (
	Reset        = "\x1b[0m"
	GreenHacker  = "\x1b[92m"
	ClearScreen  = "\x1b[2J\x1b[H"
	TimeColor    = "\x1b[90m"
	SysColor     = "\x1b[93m"
	CmdColor     = "\x1b[95m"
	AlertColor   = "\x1b[91m"
	ServerColor  = "\x1b[94m"
	HistoryColor = "\x1b[94m"
	Bell         = "\a"
)

// Palette holds the nickname colors assigned at random when a session
// registers.
var Palette = []string{
	"\x1b[91m", "\x1b[92m", "\x1b[93m",
	"\x1b[94m", "\x1b[95m", "\x1b[96m",
}

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[mJH]`)

// RandomColor picks a display color for a new session.
func RandomColor() string {
	return Palette[rand.Intn(len(Palette))]
}

// Timestamp returns the colored time prefix used by every formatted line.
func Timestamp() string {
	return TimeColor + "[" + time.Now().Format("15:04:05") + "] " + Reset
}

// StripANSI removes display markup so persisted history stays plain text.
func StripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}
