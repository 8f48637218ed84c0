package utils

import (
	"io"
	"log"
)

var (
	printLoggerInstance ILogger = defaultLogger()
)

type ILogger interface {
	// Printf formats according to a format specifier and writes to the logger.
	// Arguments are handled in the manner of fmt.Printf.
	Printf(string, ...any)
}

type defaultPrintLogger struct {
	l *log.Logger
}

func (dpl *defaultPrintLogger) Printf(fmt string, args ...any) {
	dpl.l.Printf(fmt, args...)
}

func defaultLogger() ILogger {
	return &defaultPrintLogger{
		l: log.Default(),
	}
}

// DiscardLogger returns a logger that writes nowhere.
func DiscardLogger() ILogger {
	return &defaultPrintLogger{
		l: log.New(io.Discard, "", 0),
	}
}

// PrefixLogger returns logger with prefix prepended to every format.
func PrefixLogger(logger ILogger, prefix string) ILogger {
	return prefixLogger{prefix: prefix, next: logger}
}

type prefixLogger struct {
	prefix string
	next   ILogger
}

func (p prefixLogger) Printf(format string, args ...any) {
	p.next.Printf(p.prefix+format, args...)
}

func SetLogger(logger ILogger) {
	printLoggerInstance = logger
}

func GetLogger() ILogger {
	return printLoggerInstance
}
