package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SlowQueryThreshold is the duration above which a statement is logged as slow.
const SlowQueryThreshold = 200 * time.Millisecond

// gormLogger routes gorm's statement log into logrus. Record-not-found is an
// expected outcome of lookups and is never logged.
type gormLogger struct {
	log   logrus.FieldLogger
	level logger.LogLevel
}

func newGormLogger(log logrus.FieldLogger) logger.Interface {
	if log == nil {
		return logger.Discard
	}
	return &gormLogger{log: log.WithField("component", "gorm"), level: logger.Warn}
}

func (l *gormLogger) LogMode(level logger.LogLevel) logger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *gormLogger) Info(_ context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Info {
		l.log.Infof(msg, args...)
	}
}

func (l *gormLogger) Warn(_ context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Warn {
		l.log.Warnf(msg, args...)
	}
}

func (l *gormLogger) Error(_ context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Error {
		l.log.Errorf(msg, args...)
	}
}

func (l *gormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= logger.Silent {
		return
	}
	elapsed := time.Since(begin)

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.level >= logger.Error:
		sql, rows := fc()
		l.log.WithError(err).WithFields(logrus.Fields{
			"elapsed": elapsed.String(),
			"rows":    rows,
			"sql":     sql,
		}).Error("query failed")
	case elapsed > SlowQueryThreshold && l.level >= logger.Warn:
		sql, rows := fc()
		l.log.WithFields(logrus.Fields{
			"elapsed": elapsed.String(),
			"rows":    rows,
			"sql":     sql,
		}).Warn(fmt.Sprintf("slow query >= %s", SlowQueryThreshold))
	case l.level >= logger.Info:
		sql, rows := fc()
		l.log.WithFields(logrus.Fields{
			"elapsed": elapsed.String(),
			"rows":    rows,
			"sql":     sql,
		}).Debug("query")
	}
}
