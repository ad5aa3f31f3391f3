// Package log is the service-wide leveled key/value logger. It writes
// single-line records to stderr:
//
//	2025-01-01T00:00:00Z [LEVEL] msg key=value ...
//
// The filter engine itself never logs; only the service layers
// (store, web, cron, main) do.
package log

import (
	"fmt"
	stdlog "log"
	"os"
	"strings"
	"sync"
	"time"
)

type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

var levelRank = map[Level]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

var (
	loggerOnce sync.Once
	logger     *stdlog.Logger
	minLevel   = LevelInfo
)

func initLogger() {
	loggerOnce.Do(func() {
		logger = stdlog.New(os.Stderr, "", 0)
		if env := os.Getenv("PINMAP_LOG_LEVEL"); env != "" {
			SetLevelString(env)
		}
	})
}

// SetLevel sets the minimum level emitted.
func SetLevel(l Level) {
	if _, ok := levelRank[l]; ok {
		minLevel = l
	}
}

// SetLevelString sets the minimum level from a case-insensitive name;
// unknown names are ignored.
func SetLevelString(s string) {
	SetLevel(Level(strings.ToUpper(strings.TrimSpace(s))))
}

func Debug(msg string, kv ...any) {
	emit(LevelDebug, msg, kv...)
}

func Info(msg string, kv ...any) {
	emit(LevelInfo, msg, kv...)
}

func Warn(msg string, kv ...any) {
	emit(LevelWarn, msg, kv...)
}

// Error logs msg with the error prepended to the key/value pairs.
func Error(msg string, err error, kv ...any) {
	emit(LevelError, msg, append([]any{"err", err}, kv...)...)
}

func emit(level Level, msg string, kv ...any) {
	initLogger()
	if levelRank[level] < levelRank[minLevel] {
		return
	}

	var b strings.Builder
	b.WriteString(time.Now().Format(time.RFC3339Nano))
	b.WriteString(" [")
	b.WriteString(string(level))
	b.WriteString("] ")
	b.WriteString(msg)

	// kv comes in pairs; a trailing odd value is dropped.
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		b.WriteString(" ")
		b.WriteString(key)
		b.WriteString("=")
		b.WriteString(fmt.Sprint(kv[i+1]))
	}

	logger.Println(b.String())
}
