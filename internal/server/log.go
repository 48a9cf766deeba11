package server

import (
	"log"
	"os"
)

// stderrLog writes leveled messages to stderr, leaving stdout to the
// protocol stream.
type stderrLog struct {
	l     *log.Logger
	debug bool
}

// NewStderrLog returns a Logger writing to stderr. Debug messages are
// dropped unless debug is set.
func NewStderrLog(debug bool) Logger {
	return &stderrLog{
		l:     log.New(os.Stderr, "[lane-tools-mcp] ", log.LstdFlags),
		debug: debug,
	}
}

func (s *stderrLog) Debugf(format string, a ...any) {
	if s.debug {
		s.l.Printf("Debug "+format, a...)
	}
}

func (s *stderrLog) Infof(format string, a ...any) {
	s.l.Printf("Info "+format, a...)
}

func (s *stderrLog) Warnf(format string, a ...any) {
	s.l.Printf("Warning "+format, a...)
}

func (s *stderrLog) Errorf(format string, a ...any) {
	s.l.Printf("Error "+format, a...)
}
