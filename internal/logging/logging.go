package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rifflock/lfshook"
	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls the global logrus logger
type Options struct {
	Level  string
	Format string // "text" or "json"
	File   string // empty disables the rotated file sink
}

// Setup configures the global logger: console output plus an optional rotated file
func Setup(opts Options) error {
	level, err := log.ParseLevel(opts.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
	log.SetFormatter(consoleFormatter(opts.Format))
	log.SetOutput(os.Stdout)

	if opts.File == "" {
		return nil
	}

	logDir := filepath.Dir(opts.File)
	if _, err := os.Stat(logDir); os.IsNotExist(err) {
		if err := os.MkdirAll(logDir, os.ModePerm); err != nil {
			return fmt.Errorf("create log directory: %w", err)
		}
	}

	log.AddHook(NewFileHook(&lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    100,
		MaxBackups: 30,
		MaxAge:     30,
		Compress:   true,
	}))
	return nil
}

func consoleFormatter(format string) log.Formatter {
	if format == "json" {
		return &log.JSONFormatter{}
	}
	return &log.TextFormatter{ForceColors: true, FullTimestamp: false}
}

// NewFileHook writes every level to w without colours
func NewFileHook(w *lumberjack.Logger) log.Hook {
	return lfshook.NewHook(lfshook.WriterMap{
		log.PanicLevel: w,
		log.FatalLevel: w,
		log.ErrorLevel: w,
		log.WarnLevel:  w,
		log.InfoLevel:  w,
		log.DebugLevel: w,
		log.TraceLevel: w,
	}, &log.TextFormatter{DisableColors: true, FullTimestamp: true})
}
