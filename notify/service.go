// Package notify defines the out-of-scope push-notification
// collaborator that the metric reactor and ticker engine raise
// human-facing alerts through (12V battery alert, charge-state changes).
package notify

// Service delivers a notification with a channel name (e.g. "alert",
// "info"), a subtype identifying what happened, and a free-form body.
type Service interface {
	Notify(channel, subtype, body string)
}

// LogService is a reference Service that writes each notification as a
// log line, matching the teacher's pervasive log-and-continue handling
// of anything it cannot itself act on.
type LogService struct {
	log Logger
}

// Logger is the minimal subset of logging.Logger LogService needs,
// kept narrow so this package doesn't import logging just for one method.
type Logger interface {
	Info(format string, args ...interface{})
}

func NewLogService(logger Logger) *LogService {
	return &LogService{log: logger}
}

func (s *LogService) Notify(channel, subtype, body string) {
	s.log.Info("notify[%s/%s]: %s", channel, subtype, body)
}

var _ Service = (*LogService)(nil)
