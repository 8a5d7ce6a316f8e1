package utils

import (
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	appLogger *logrus.Logger
	loggerMu  sync.Mutex
)

// Logger returns the process-wide logrus logger, initialized on first use.
// When logFile is non-empty the output is rotated with lumberjack, otherwise
// it goes to stdout.
func Logger(logFile string) *logrus.Logger {
	loggerMu.Lock()
	defer loggerMu.Unlock()

	if appLogger != nil {
		return appLogger
	}

	appLogger = logrus.New()
	appLogger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	appLogger.SetLevel(logrus.InfoLevel)

	var out io.Writer = os.Stdout
	if logFile != "" {
		out = &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
	}
	appLogger.SetOutput(out)

	return appLogger
}
