package zkudp

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
)

type Logger interface {
	Info(v ...interface{})
	Infof(format string, v ...interface{})
	Debug(v ...interface{})
	Debugf(format string, v ...interface{})
	Error(v ...interface{})
	Errorf(format string, v ...interface{})
}

// Log is used by clients created without WithLogger.
var Log Logger

type zkLogger struct {
	log zerolog.Logger
}

// NewLogger adapts a zerolog logger.
func NewLogger(l zerolog.Logger) Logger {
	return &zkLogger{log: l}
}

func defaultLogger() Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
	l := zerolog.New(output).Level(zerolog.InfoLevel).With().Timestamp().Str("component", "zkudp").Logger()
	return NewLogger(l)
}

func (z *zkLogger) Info(v ...interface{}) {
	z.log.Info().Msg(fmt.Sprint(v...))
}
func (z *zkLogger) Infof(format string, v ...interface{}) {
	z.log.Info().Msgf(format, v...)
}
func (z *zkLogger) Debug(v ...interface{}) {
	z.log.Debug().Msg(fmt.Sprint(v...))
}
func (z *zkLogger) Debugf(format string, v ...interface{}) {
	z.log.Debug().Msgf(format, v...)
}
func (z *zkLogger) Error(v ...interface{}) {
	z.log.Error().Msg(fmt.Sprint(v...))
}
func (z *zkLogger) Errorf(format string, v ...interface{}) {
	z.log.Error().Msgf(format, v...)
}
