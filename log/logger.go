package log

import (
	"io"
	"os"
	"sync"

	"github.com/op/go-logging"
)

type Level logging.Level

// The levels that can be passed to the SetLevel function.
const (
	Debug Level = iota
	Info
	Notice
	Warning
	Error
	Critical
)

var format = logging.MustStringFormatter(
	`%{color}[%{time:15:04:05.000}] [%{module}] [%{level:.4s}]%{color:reset} %{message}`,
)

var (
	mu             sync.Mutex
	leveledBackend logging.LeveledBackend
	currentLevel   = logging.NOTICE
)

// The logger interface used by all engine subsystems.
type Logger interface {
	Debug(v ...interface{})
	Debugf(format string, v ...interface{})

	Info(v ...interface{})
	Infof(format string, v ...interface{})

	Notice(v ...interface{})
	Noticef(format string, v ...interface{})

	Warning(v ...interface{})
	Warningf(format string, v ...interface{})

	Error(v ...interface{})
	Errorf(format string, v ...interface{})

	// Critical is reserved for unrecoverable failures that terminate the process.
	Critical(v ...interface{})
	Criticalf(format string, v ...interface{})
}

// Create a new logger for the given subsystem.
func New(module string) Logger {
	return logging.MustGetLogger(module)
}

// Redirect all log output to sink.
func SetSink(sink io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	backend := logging.NewLogBackend(sink, "", 0)
	leveledBackend = logging.AddModuleLevel(logging.NewBackendFormatter(backend, format))
	leveledBackend.SetLevel(currentLevel, "")
	logging.SetBackend(leveledBackend)
}

// Set verbosity for all subsystems.
func SetLevel(level Level) {
	setModuleLevel(level, "")
}

// Set verbosity for a single subsystem.
func SetModuleLevel(level Level, module string) {
	setModuleLevel(level, module)
}

func setModuleLevel(level Level, module string) {
	mu.Lock()
	defer mu.Unlock()

	loggerLevel := toBackendLevel(level)
	if module == "" {
		currentLevel = loggerLevel
	}
	leveledBackend.SetLevel(loggerLevel, module)
}

func toBackendLevel(level Level) logging.Level {
	switch level {
	case Debug:
		return logging.DEBUG
	case Info:
		return logging.INFO
	case Notice:
		return logging.NOTICE
	case Warning:
		return logging.WARNING
	case Error:
		return logging.ERROR
	default:
		return logging.CRITICAL
	}
}

func init() {
	SetSink(os.Stderr)
}
