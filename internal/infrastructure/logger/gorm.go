package logger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	gormlogger "gorm.io/gorm/logger"
)

// maxLoggedSQL bounds the statement text; bulk order item inserts get long.
const maxLoggedSQL = 2048

// GormLogger routes GORM statements into zap, tagged with the table they
// touch and the request's correlation fields.
type GormLogger struct {
	log          *zap.Logger
	level        gormlogger.LogLevel
	slow         time.Duration
	hideNotFound bool
}

// GormLoggerOption configures a GormLogger
type GormLoggerOption func(*GormLogger)

// WithSlowThreshold sets the duration above which a statement is logged at
// warn. Zero or negative turns slow-query logging off.
func WithSlowThreshold(threshold time.Duration) GormLoggerOption {
	return func(l *GormLogger) {
		l.slow = threshold
	}
}

// WithIgnoreRecordNotFoundError controls whether lookups that find nothing
// (an unknown slug, a missing cart) are logged as errors
func WithIgnoreRecordNotFoundError(ignore bool) GormLoggerOption {
	return func(l *GormLogger) {
		l.hideNotFound = ignore
	}
}

// NewGormLogger creates a GORM logger writing to the "sql" child of base
func NewGormLogger(base *zap.Logger, level gormlogger.LogLevel, opts ...GormLoggerOption) *GormLogger {
	l := &GormLogger{
		log:          base.Named("sql"),
		level:        level,
		slow:         200 * time.Millisecond,
		hideNotFound: true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LogMode implements gormlogger.Interface
func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

// Info implements gormlogger.Interface
func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Info, zapcore.InfoLevel, msg, data)
}

// Warn implements gormlogger.Interface
func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Warn, zapcore.WarnLevel, msg, data)
}

// Error implements gormlogger.Interface
func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Error, zapcore.ErrorLevel, msg, data)
}

func (l *GormLogger) printf(ctx context.Context, at gormlogger.LogLevel, lvl zapcore.Level, msg string, data []any) {
	if l.level < at {
		return
	}
	l.log.Log(lvl, fmt.Sprintf(msg, data...), Fields(ctx)...)
}

// Trace implements gormlogger.Interface. Failed statements log at error,
// slow ones at warn and everything else at debug.
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)

	switch {
	case err != nil && l.level >= gormlogger.Error:
		if l.hideNotFound && errors.Is(err, gormlogger.ErrRecordNotFound) {
			return
		}
		fields := append(l.statementFields(ctx, elapsed, fc), zap.Error(err))
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			// The client went away mid-request; the database is fine.
			l.log.Warn("SQL abandoned", fields...)
			return
		}
		l.log.Error("SQL failed", fields...)

	case l.slow > 0 && elapsed > l.slow && l.level >= gormlogger.Warn:
		fields := append(l.statementFields(ctx, elapsed, fc), zap.Duration("threshold", l.slow))
		l.log.Warn("Slow SQL", fields...)

	case l.level >= gormlogger.Info:
		l.log.Debug("SQL", l.statementFields(ctx, elapsed, fc)...)
	}
}

func (l *GormLogger) statementFields(ctx context.Context, elapsed time.Duration, fc func() (string, int64)) []zap.Field {
	sql, rows := fc()
	fields := []zap.Field{
		zap.String("table", statementTable(sql)),
		zap.Duration("elapsed", elapsed),
		zap.Int64("rows", rows),
	}
	if len(sql) > maxLoggedSQL {
		fields = append(fields, zap.String("sql", sql[:maxLoggedSQL]), zap.Bool("sql_truncated", true))
	} else {
		fields = append(fields, zap.String("sql", sql))
	}
	return append(fields, Fields(ctx)...)
}

// statementTable returns the first table named after FROM, INTO or UPDATE,
// without quotes or schema. It returns "" when none is found.
func statementTable(sql string) string {
	words := strings.Fields(sql)
	for i := 0; i < len(words)-1; i++ {
		switch strings.ToUpper(words[i]) {
		case "FROM", "INTO", "UPDATE":
			name := strings.TrimRight(words[i+1], "(),;")
			if j := strings.LastIndexByte(name, '.'); j >= 0 {
				name = name[j+1:]
			}
			name = strings.Trim(name, "\"`")
			if name != "" && !strings.HasPrefix(name, "(") {
				return name
			}
		}
	}
	return ""
}

// MapGormLogLevel maps the application log level to a GORM log level.
// Statements are only traced at debug.
func MapGormLogLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "debug":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}
