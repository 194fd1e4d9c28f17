// Licensed to the LF AI & Data foundation under one
// or more contributor license agreements. See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership. The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License. You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package log provides the structured logger shared across the module.
// It wraps a single *zap.Logger so call sites only ever depend on this
// package, not on zap directly for construction/configuration.
package log

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	_globalLogger *zap.Logger
	_globalMu     sync.RWMutex
)

func init() {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		logger = zap.NewNop()
	}
	_globalLogger = logger
}

// ReplaceGlobals swaps the package-level logger, returning a function
// that restores the previous one. Tests use this to capture output.
func ReplaceGlobals(logger *zap.Logger) func() {
	_globalMu.Lock()
	prev := _globalLogger
	_globalLogger = logger
	_globalMu.Unlock()
	return func() {
		_globalMu.Lock()
		_globalLogger = prev
		_globalMu.Unlock()
	}
}

func logger() *zap.Logger {
	_globalMu.RLock()
	defer _globalMu.RUnlock()
	return _globalLogger
}

// Debug logs at debug level.
func Debug(msg string, fields ...zap.Field) {
	logger().Debug(msg, fields...)
}

// Info logs at info level.
func Info(msg string, fields ...zap.Field) {
	logger().Info(msg, fields...)
}

// Warn logs at warn level.
func Warn(msg string, fields ...zap.Field) {
	logger().Warn(msg, fields...)
}

// Error logs at error level.
func Error(msg string, fields ...zap.Field) {
	logger().Error(msg, fields...)
}

type ctxKey struct{}

// WithTraceID attaches a trace id to the context so subsequent Ctx(ctx)
// calls tag every log line with it.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, traceID)
}

// Ctx returns a logger decorated with the trace id carried by ctx, if any.
func Ctx(ctx context.Context) *zap.Logger {
	if traceID, ok := ctx.Value(ctxKey{}).(string); ok && traceID != "" {
		return logger().With(zap.String("traceID", traceID))
	}
	return logger()
}
