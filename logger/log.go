package logger

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

var log = logrus.New()

type Fields = logrus.Fields

func GetLevel() string {
	return log.GetLevel().String()
}

// SetLevel accepts logrus level names; an empty string means info.
func SetLevel(lvl string) error {
	if lvl == "" {
		lvl = "info"
	}
	level, err := logrus.ParseLevel(lvl)
	if err != nil {
		return err
	}
	log.SetLevel(level)
	Debugf("Set logger level to %v", level)
	return nil
}

// SetFormat switches between "text" (default) and "json" output.
func SetFormat(format string) {
	switch strings.ToLower(format) {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	default:
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

func SetOutput(w io.Writer) {
	log.SetOutput(w)
}

func WithFields(fields Fields) *logrus.Entry {
	return log.WithFields(fields)
}

func Debug(args ...interface{}) {
	log.Debug(args...)
}

func Info(args ...interface{}) {
	log.Info(args...)
}

func Warn(args ...interface{}) {
	log.Warn(args...)
}

func Error(args ...interface{}) {
	log.Error(args...)
}

func Debugf(template string, args ...interface{}) {
	log.Debugf(template, args...)
}

func Infof(template string, args ...interface{}) {
	log.Infof(template, args...)
}

func Warnf(template string, args ...interface{}) {
	log.Warnf(template, args...)
}

func Errorf(template string, args ...interface{}) {
	log.Errorf(template, args...)
}
