package logger

import (
	"io"
	"os"

	"github.com/natefinch/lumberjack"
	"github.com/rs/zerolog"

	"terminal-portal/internal/config"
)

func New(env string, fileCfg config.LogConfig) zerolog.Logger {
	var out io.Writer = os.Stderr
	if env == "development" {
		out = zerolog.ConsoleWriter{Out: os.Stderr}
	}

	if fileCfg.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   fileCfg.File,
			MaxSize:    fileCfg.FileMaxSizeMB,
			MaxBackups: fileCfg.FileMaxBackups,
			MaxAge:     fileCfg.FileMaxAgeDays,
			Compress:   true,
		}
		// the rotated file always gets JSON lines, whatever the console format is
		out = zerolog.MultiLevelWriter(out, rotator)
	}

	return zerolog.New(out).With().Timestamp().Logger()
}
