package config

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// Log is the shared application logger. Until InitLogging runs it
// discards output, since stdout belongs to the TUI and must stay clean.
var Log = newQuietLogger()

func newQuietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// InitLogging redirects Log to <dataDir>/cutui.log. CUTUI_DEBUG=1
// raises the level to debug. The returned closer owns the log file;
// a failure to open it leaves Log discarding and is returned for the
// caller to report.
func InitLogging(dataDir string) (io.Closer, error) {
	if err := EnsureDir(dataDir); err != nil {
		return nil, err
	}

	logPath := filepath.Join(dataDir, "cutui.log")
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, err
	}

	Log.SetOutput(f)
	Log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if debug := os.Getenv("CUTUI_DEBUG"); debug == "true" || debug == "1" {
		Log.SetLevel(logrus.DebugLevel)
	}
	Log.WithField("path", logPath).Info("logging started")
	return f, nil
}
