package main

import (
	"strings"

	"go.uber.org/zap"
)

// newLogger returns a console logger for debug and a JSON logger otherwise.
func newLogger(level string) (*zap.SugaredLogger, error) {
	var cfg zap.Config
	if strings.EqualFold(level, "debug") {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		if lvl, err := zap.ParseAtomicLevel(level); err == nil {
			cfg.Level = lvl
		}
	}
	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return l.Sugar(), nil
}
