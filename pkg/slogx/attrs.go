package slogx

import (
	"fmt"
	"log/slog"
	"reflect"
)

const (
	// KeyLoggerName is the attribute key naming the component that logs.
	KeyLoggerName = "logger"
)

// Error returns an "error" attribute holding the error message.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.String("error", err.Error())
}

// Stringer returns an attribute holding value.String().
func Stringer(key string, value fmt.Stringer) slog.Attr {
	return slog.String(key, value.String())
}

// Type returns an attribute holding the dynamic type name of value.
func Type(key string, value any) slog.Attr {
	if value == nil {
		return slog.String(key, "<nil>")
	}
	return slog.String(key, reflect.TypeOf(value).String())
}

// Tool returns the attribute used to identify a tool in log lines.
func Tool(name string) slog.Attr {
	return slog.String("tool", name)
}

// LoggerName returns the attribute naming the component that logs.
func LoggerName(name string) slog.Attr {
	return slog.String(KeyLoggerName, name)
}
