package logger

import (
	"context"
	"errors"
	log "log/slog"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	gormSlowThreshold = 200 * time.Millisecond
	sqlLogLimit       = 2000
	mysqlDupEntry     = 1062
)

// SlogGormLogger 把 GORM 日志转到 slog；查无记录与唯一键冲突是业务分支，不按错误记录
type SlogGormLogger struct {
	LogLevel      logger.LogLevel
	SlowThreshold time.Duration
}

func NewGormLogger() *SlogGormLogger {
	return &SlogGormLogger{LogLevel: logger.Warn, SlowThreshold: gormSlowThreshold}
}

func (l *SlogGormLogger) LogMode(level logger.LogLevel) logger.Interface {
	next := *l
	next.LogLevel = level
	return &next
}

func (l *SlogGormLogger) Info(ctx context.Context, msg string, data ...any) {
	if l.LogLevel >= logger.Info {
		log.InfoContext(ctx, msg, "data", data)
	}
}

func (l *SlogGormLogger) Warn(ctx context.Context, msg string, data ...any) {
	if l.LogLevel >= logger.Warn {
		log.WarnContext(ctx, msg, "data", data)
	}
}

func (l *SlogGormLogger) Error(ctx context.Context, msg string, data ...any) {
	if l.LogLevel >= logger.Error {
		log.ErrorContext(ctx, msg, "data", data)
	}
}

func (l *SlogGormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.LogLevel <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()
	msg := "SQL " + sqlOperation(sql)

	fields := []any{
		log.String("sql", truncateSQL(sql)),
		log.Duration("latency", elapsed),
		log.Int64("rows", rows),
	}

	switch {
	case err != nil && isExpectedSQLError(err):
		if l.LogLevel >= logger.Info {
			log.InfoContext(ctx, msg, append(fields, log.Any("err", err))...)
		}
	case err != nil:
		log.ErrorContext(ctx, msg+" Error", append(fields, log.Any("err", err))...)
	case l.SlowThreshold > 0 && elapsed > l.SlowThreshold:
		log.WarnContext(ctx, msg+" Slow", fields...)
	case l.LogLevel >= logger.Info:
		log.InfoContext(ctx, msg, fields...)
	}
}

func sqlOperation(sql string) string {
	if op, _, ok := strings.Cut(strings.TrimSpace(sql), " "); ok && op != "" {
		return strings.ToUpper(op)
	}
	return "QUERY"
}

func truncateSQL(sql string) string {
	if len(sql) > sqlLogLimit {
		return sql[:sqlLogLimit] + "...[truncated]"
	}
	return sql
}

// isExpectedSQLError 重复点赞、重复关注等由唯一键兜底的写入
func isExpectedSQLError(err error) bool {
	if errors.Is(err, logger.ErrRecordNotFound) || errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDupEntry
}
