package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"
)

// AccessLogger defines the interface for gate decision logging
type AccessLogger interface {
	// LogDecision logs one gate decision for a page request
	LogDecision(account string, page string, status string, details ...interface{})
	// LogAuth logs identity resolution operations
	LogAuth(operation string, account string, status string, details ...interface{})
}

type accessLogger struct {
	logger *log.Logger
}

// NewAccessLogger creates a new access logger
func NewAccessLogger(logPath string) (AccessLogger, error) {
	var writer io.Writer

	if logPath == "" {
		writer = io.Discard
	} else {
		f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("opening access log file: %w", err)
		}
		writer = f
	}

	return &accessLogger{
		logger: log.New(writer, "", 0), // No flags, we'll handle formatting ourselves
	}, nil
}

func (l *accessLogger) LogDecision(account string, page string, status string, details ...interface{}) {
	var parts []string
	parts = append(parts, "op=GATE")
	if account != "" {
		parts = append(parts, fmt.Sprintf("account=%s", formatValue(account)))
	}
	if page != "" {
		parts = append(parts, fmt.Sprintf("page=%s", formatValue(page)))
	}
	parts = append(parts, fmt.Sprintf("status=%s", formatValue(status)))
	l.write(parts, details...)
}

func (l *accessLogger) LogAuth(operation string, account string, status string, details ...interface{}) {
	var parts []string
	parts = append(parts, fmt.Sprintf("op=%s", formatValue(operation)))
	if account != "" {
		parts = append(parts, fmt.Sprintf("account=%s", formatValue(account)))
	}
	parts = append(parts, fmt.Sprintf("status=%s", formatValue(status)))
	l.write(parts, details...)
}

func (l *accessLogger) write(parts []string, details ...interface{}) {
	for i := 0; i < len(details); i += 2 {
		if i+1 < len(details) {
			parts = append(parts, fmt.Sprintf("%v=%s", details[i], formatValue(details[i+1])))
		}
	}

	timestamp := time.Now().UTC().Format("2006-01-02 15:04:05 -0700")
	l.logger.Printf("%s %s", timestamp, strings.Join(parts, " "))
}
