package main

import (
	"os"

	"github.com/sirupsen/logrus"
)

func newLogger(level string) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)
	return l
}

func componentLogger(l *logrus.Logger, name string) *logrus.Entry {
	return l.WithField("component", name)
}
