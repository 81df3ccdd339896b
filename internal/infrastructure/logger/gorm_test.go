package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"go.uber.org/zap/zapcore"
	gormlogger "gorm.io/gorm/logger"
)

func newObservedGormLogger(level gormlogger.LogLevel, opts ...GormLoggerOption) (*GormLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewGormLogger(zap.New(core), level, opts...), logs
}

func TestGormLogger_Trace(t *testing.T) {
	t.Run("logs queries at debug", func(t *testing.T) {
		gl, logs := newObservedGormLogger(gormlogger.Info)

		gl.Trace(context.Background(), time.Now(), func() (string, int64) {
			return "SELECT 1", 1
		}, nil)

		entries := logs.FilterMessage("SQL Query").All()
		assert.Len(t, entries, 1)
		assert.Equal(t, "SELECT 1", entries[0].ContextMap()["sql"])
	})

	t.Run("logs errors", func(t *testing.T) {
		gl, logs := newObservedGormLogger(gormlogger.Error)

		gl.Trace(context.Background(), time.Now(), func() (string, int64) {
			return "SELECT broken", 0
		}, errors.New("syntax error"))

		assert.Len(t, logs.FilterMessage("SQL Error").All(), 1)
	})

	t.Run("ignores record not found by default", func(t *testing.T) {
		gl, logs := newObservedGormLogger(gormlogger.Error)

		gl.Trace(context.Background(), time.Now(), func() (string, int64) {
			return "SELECT 1", 0
		}, gormlogger.ErrRecordNotFound)

		assert.Empty(t, logs.All())
	})

	t.Run("flags slow queries", func(t *testing.T) {
		gl, logs := newObservedGormLogger(gormlogger.Warn, WithSlowThreshold(time.Nanosecond))

		gl.Trace(context.Background(), time.Now().Add(-time.Second), func() (string, int64) {
			return "SELECT pg_sleep(10)", 0
		}, nil)

		assert.Len(t, logs.All(), 1)
		assert.Equal(t, zapcore.WarnLevel, logs.All()[0].Level)
	})

	t.Run("silent logs nothing", func(t *testing.T) {
		gl, logs := newObservedGormLogger(gormlogger.Silent)

		gl.Trace(context.Background(), time.Now(), func() (string, int64) {
			return "SELECT 1", 1
		}, nil)

		assert.Empty(t, logs.All())
	})
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Error, MapGormLogLevel("error"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("anything"))
}
