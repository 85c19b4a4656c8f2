package logger

import (
	"sync"
)

// Log levels used across the application.
const (
	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	ErrorLevel = "error"
)

// DefaultRemoteQueueSize bounds the number of log lines buffered for shipping.
const DefaultRemoteQueueSize = 512

var (
	// globalLogger holds the singleton logger instance.
	globalLogger *Logger
	once         sync.Once
)

// Get returns a singleton logger configured with the provided level.
// The first call initializes the logger; subsequent calls ignore the level
// and return the already initialized instance. Use SetLevel to change it.
func Get(level string) *Logger {
	return Init(level, DefaultRemoteQueueSize)
}

// Init is Get with an explicit remote queue size. Only the first of Init
// and Get takes effect.
func Init(level string, queueSize int) *Logger {
	once.Do(func() {
		if queueSize <= 0 {
			queueSize = DefaultRemoteQueueSize
		}
		globalLogger = newZapLogger(level, NewShipper(queueSize))
	})
	return globalLogger
}
