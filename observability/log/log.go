// Copyright 2023 Linkall Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	// standard libraries.
	"context"
	"io"
	"os"
	"strings"
	"time"

	// third-party libraries.
	"github.com/sirupsen/logrus"
)

// EnvLogLevel names the environment variable holding the initial level.
const EnvLogLevel = "MC3DS_LOG_LEVEL"

type Logger interface {
	Debug(ctx context.Context, msg string, fields map[string]interface{})
	Info(ctx context.Context, msg string, fields map[string]interface{})
	Warning(ctx context.Context, msg string, fields map[string]interface{})
	Error(ctx context.Context, msg string, fields map[string]interface{})
	SetLevel(level string)
	SetLogWriter(writer io.Writer)
}

func init() {
	logger := logrus.New()
	logger.Formatter = &logrus.TextFormatter{TimestampFormat: time.RFC3339Nano, FullTimestamp: true}
	r := &defaultLogger{
		logger: logger,
	}
	level := os.Getenv(EnvLogLevel)
	r.SetLevel(level)
	vLog = r
	vLog.Debug(context.Background(), "logger level has been set", map[string]interface{}{
		"log_level": level,
	})
}

var vLog Logger

type defaultLogger struct {
	logger *logrus.Logger
}

func (l *defaultLogger) Debug(_ context.Context, msg string, fields map[string]interface{}) {
	if msg == "" && len(fields) == 0 {
		return
	}
	l.logger.WithFields(fields).Debug(msg)
}

func (l *defaultLogger) Info(_ context.Context, msg string, fields map[string]interface{}) {
	if msg == "" && len(fields) == 0 {
		return
	}
	l.logger.WithFields(fields).Info(msg)
}

func (l *defaultLogger) Warning(_ context.Context, msg string, fields map[string]interface{}) {
	if msg == "" && len(fields) == 0 {
		return
	}
	l.logger.WithFields(fields).Warning(msg)
}

func (l *defaultLogger) Error(_ context.Context, msg string, fields map[string]interface{}) {
	if msg == "" && len(fields) == 0 {
		return
	}
	l.logger.WithFields(fields).Error(msg)
}

func (l *defaultLogger) SetLevel(level string) {
	switch strings.ToLower(level) {
	case "debug":
		l.logger.SetLevel(logrus.DebugLevel)
	case "warn", "warning":
		l.logger.SetLevel(logrus.WarnLevel)
	case "error":
		l.logger.SetLevel(logrus.ErrorLevel)
	default:
		l.logger.SetLevel(logrus.InfoLevel)
	}
}

func (l *defaultLogger) SetLogWriter(writer io.Writer) {
	l.logger.Out = writer
}

// SetLogger replaces the default logrus logger.
func SetLogger(logger Logger) {
	vLog = logger
}

func SetLogLevel(level string) {
	if level == "" {
		return
	}
	vLog.SetLevel(level)
}

func SetLogWriter(writer io.Writer) {
	if writer == nil {
		return
	}
	vLog.SetLogWriter(writer)
}

func Debug(ctx context.Context, msg string, fields map[string]interface{}) {
	vLog.Debug(ctx, msg, fields)
}

func Info(ctx context.Context, msg string, fields map[string]interface{}) {
	if msg == "" && len(fields) == 0 {
		return
	}
	vLog.Info(ctx, msg, fields)
}

func Warning(ctx context.Context, msg string, fields map[string]interface{}) {
	if msg == "" && len(fields) == 0 {
		return
	}
	vLog.Warning(ctx, msg, fields)
}

func Error(ctx context.Context, msg string, fields map[string]interface{}) {
	vLog.Error(ctx, msg, fields)
}
