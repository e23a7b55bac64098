/*
 * iptv-player is a project to browse and play IPTV playlists from the terminal.
 * Copyright (C) 2025  Lucas Duport
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 */

package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config holds the logging configuration
var Config = struct {
	DebugLoggingEnabled bool
	LogLevel            LogLevel
	LogToFile           bool
	LogFilePath         string
	logFile             *os.File
}{
	DebugLoggingEnabled: false,
	LogLevel:            LevelInfo,
	LogToFile:           false,
}

// LogLevel represents logging levels
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

var (
	loggerMu sync.RWMutex
	logger   zerolog.Logger
)

func init() {
	SetOutput(os.Stderr)

	// Initialize logging configuration from environment
	Config.DebugLoggingEnabled = GetEnvBool("DEBUG_LOGGING", false)
	Config.LogLevel = ParseLogLevel(os.Getenv("LOG_LEVEL"))

	var out io.Writer = os.Stderr

	// Configure file logging if requested
	logFilePath := os.Getenv("LOG_FILE")
	if logFilePath != "" {
		Config.LogToFile = true
		Config.LogFilePath = logFilePath

		logDir := filepath.Dir(logFilePath)
		if err := os.MkdirAll(logDir, 0755); err != nil {
			fmt.Fprintf(os.Stderr, "Error creating log directory: %v\n", err)
		}

		file, err := os.OpenFile(logFilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
		} else {
			Config.logFile = file
			out = file
		}
	}

	if out != os.Stderr {
		SetOutput(out)
	}
}

// ParseLogLevel converts a level name to a LogLevel. Unknown names fall back
// to info, or debug when DEBUG_LOGGING is enabled.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		if Config.DebugLoggingEnabled {
			return LevelDebug
		}
		return LevelInfo
	}
}

// SetOutput redirects all log output to w. Files get plain JSON lines,
// anything else gets the human readable console format.
func SetOutput(w io.Writer) {
	var sink io.Writer = w
	if _, isFile := w.(*os.File); !isFile || w == os.Stderr || w == os.Stdout {
		sink = zerolog.ConsoleWriter{Out: w, TimeFormat: "2006-01-02 15:04:05.000", NoColor: true}
	}

	loggerMu.Lock()
	logger = zerolog.New(sink).With().Timestamp().Logger()
	loggerMu.Unlock()
}

// SetLogLevel changes the minimum level at runtime.
func SetLogLevel(level LogLevel) {
	Config.LogLevel = level
	if level == LevelDebug {
		Config.DebugLoggingEnabled = true
	}
}

// Close closes any open log files
func Close() {
	if Config.logFile != nil {
		Config.logFile.Close()
	}
}

// InfoLog logs an info message
func InfoLog(format string, v ...interface{}) {
	logAt(LevelInfo, format, v...)
}

// WarnLog logs a warning message
func WarnLog(format string, v ...interface{}) {
	logAt(LevelWarn, format, v...)
}

// DebugLog logs a debug message if debug logging is enabled
func DebugLog(format string, v ...interface{}) {
	logAt(LevelDebug, format, v...)
}

// ErrorLog logs an error message
func ErrorLog(format string, v ...interface{}) {
	logAt(LevelError, format, v...)
}

func enabled(level LogLevel) bool {
	if level == LevelDebug {
		return Config.DebugLoggingEnabled || Config.LogLevel == LevelDebug
	}
	return Config.LogLevel <= level
}

// logAt must be called directly by the exported helpers so the caller frame
// points at their caller.
func logAt(level LogLevel, format string, v ...interface{}) {
	if !enabled(level) {
		return
	}

	caller := "unknown"
	if _, file, line, ok := runtime.Caller(2); ok {
		caller = fmt.Sprintf("%s:%d", filepath.Base(file), line)
	}

	loggerMu.RLock()
	l := logger
	loggerMu.RUnlock()

	l.WithLevel(level.zerolog()).Str("caller", caller).Msgf(format, v...)
}

var levelNames = map[LogLevel]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
}

func (l LogLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "UNKNOWN"
}

func (l LogLevel) zerolog() zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Since formats the elapsed time since start for log lines.
func Since(start time.Time) string {
	return time.Since(start).Truncate(time.Millisecond).String()
}
