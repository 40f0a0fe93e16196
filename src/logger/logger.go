// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"github.com/H0llyW00dzZ/x509-trust-validator/src/internal/helper/gc"
)

// Logger defines the interface for logging operations.
//
// This interface supports both CLI and [MCP] server modes, allowing seamless
// switching between human-readable output and structured logging.
//
// [MCP]: https://modelcontextprotocol.io/docs/getting-started/intro
type Logger interface {
	// Printf formats and prints a log message.
	Printf(format string, v ...any)
	// Println prints a log message with a newline.
	Println(v ...any)
	// SetOutput sets the output destination for the logger.
	SetOutput(w io.Writer)
}

// CLILogger implements Logger using the standard log package.
// It's designed for command-line interface output with human-readable formatting.
type CLILogger struct{ logger *log.Logger }

// NewCLILogger creates a new CLI logger writing to stderr with timestamps
// disabled, leaving stdout for the validation report.
func NewCLILogger() *CLILogger {
	l := log.New(os.Stderr, "", 0)
	return &CLILogger{logger: l}
}

// Printf formats and prints a log message using fmt.Printf semantics.
func (c *CLILogger) Printf(format string, v ...any) { c.logger.Printf(format, v...) }

// Println prints a log message with a newline.
func (c *CLILogger) Println(v ...any) { c.logger.Println(v...) }

// SetOutput sets the output destination for the CLI logger.
func (c *CLILogger) SetOutput(w io.Writer) { c.logger.SetOutput(w) }

// JSONLogger writes one JSON object per line with "level" and "message"
// fields. It can be silenced entirely, which is the default for stdio
// transports.
//
// JSONLogger is safe for concurrent use by multiple goroutines.
type JSONLogger struct {
	mu     sync.Mutex
	writer io.Writer
	silent bool
	level  string
}

// NewJSONLogger creates a JSON logger. A nil writer discards output.
func NewJSONLogger(writer io.Writer, silent bool) *JSONLogger {
	if writer == nil {
		writer = io.Discard
	}
	return &JSONLogger{
		writer: writer,
		silent: silent,
		level:  "info",
	}
}

// WithLevel returns a logger sharing the writer that tags entries with level.
func (m *JSONLogger) WithLevel(level string) *JSONLogger {
	m.mu.Lock()
	defer m.mu.Unlock()
	return &JSONLogger{writer: m.writer, silent: m.silent, level: level}
}

func (m *JSONLogger) write(msg string) {
	if m.silent {
		return
	}

	buf := gc.Default.Get()
	defer func() {
		buf.Reset()
		gc.Default.Put(buf)
	}()

	if err := json.NewEncoder(buf).Encode(struct {
		Level   string `json:"level"`
		Message string `json:"message"`
	}{m.level, msg}); err != nil {
		return
	}

	m.mu.Lock()
	_, _ = buf.WriteTo(m.writer)
	m.mu.Unlock()
}

// Printf formats and logs a structured message.
func (m *JSONLogger) Printf(format string, v ...any) { m.write(fmt.Sprintf(format, v...)) }

// Println logs a structured message.
func (m *JSONLogger) Println(v ...any) { m.write(fmt.Sprint(v...)) }

// SetOutput sets the output destination. A nil writer discards output.
func (m *JSONLogger) SetOutput(w io.Writer) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if w == nil {
		m.writer = io.Discard
	} else {
		m.writer = w
	}
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Printf(string, ...any) {}
func (NopLogger) Println(...any)        {}
func (NopLogger) SetOutput(io.Writer)   {}
