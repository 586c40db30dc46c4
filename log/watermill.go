package log

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/sirupsen/logrus"
)

// NewWatermill adapts a logrus logger to watermill's LoggerAdapter so that
// the router, publishers and subscribers log through the same sink as the
// rest of the service.
func NewWatermill(logger logrus.FieldLogger) watermill.LoggerAdapter {
	return watermillAdapter{logger: logger}
}

type watermillAdapter struct {
	logger logrus.FieldLogger
}

func (a watermillAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.withFields(fields).WithError(err).Error(msg)
}

func (a watermillAdapter) Info(msg string, fields watermill.LogFields) {
	a.withFields(fields).Info(msg)
}

func (a watermillAdapter) Debug(msg string, fields watermill.LogFields) {
	a.withFields(fields).Debug(msg)
}

func (a watermillAdapter) Trace(msg string, fields watermill.LogFields) {
	a.withFields(fields).Debug(msg)
}

func (a watermillAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return watermillAdapter{logger: a.withFields(fields)}
}

func (a watermillAdapter) withFields(fields watermill.LogFields) logrus.FieldLogger {
	return a.logger.WithFields(logrus.Fields(fields))
}
