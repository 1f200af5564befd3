package notify

import "testing"

type recordingLogger struct {
	lines []string
}

func (r *recordingLogger) Info(format string, args ...interface{}) {
	r.lines = append(r.lines, format)
}

func TestLogService_Notify(t *testing.T) {
	l := &recordingLogger{}
	s := NewLogService(l)

	s.Notify("alert", "battery.12v", "voltage low")

	if len(l.lines) != 1 {
		t.Fatalf("expected 1 log line, got %d", len(l.lines))
	}
}
