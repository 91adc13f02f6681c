package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingLogger struct {
	lines []string
}

func (r *recordingLogger) Debug(message string, keyvals ...any) { r.lines = append(r.lines, "DEBUG "+message) }
func (r *recordingLogger) Info(message string, keyvals ...any)  { r.lines = append(r.lines, "INFO "+message) }
func (r *recordingLogger) Warn(message string, keyvals ...any)  { r.lines = append(r.lines, "WARN "+message) }
func (r *recordingLogger) Error(message string, keyvals ...any) { r.lines = append(r.lines, "ERROR "+message) }
func (r *recordingLogger) Fatal(message string, keyvals ...any) { r.lines = append(r.lines, "FATAL "+message) }

func TestDispatchToAllBackends(t *testing.T) {
	a, b := &recordingLogger{}, &recordingLogger{}
	Init(a, b)
	t.Cleanup(func() { singleton = nil })

	Info("parsed", "lines", 3)
	Warn("skipped line", "line", 2)

	assert.Equal(t, []string{"INFO parsed", "WARN skipped line"}, a.lines)
	assert.Equal(t, a.lines, b.lines)
}

func TestNoopBeforeInit(t *testing.T) {
	singleton = nil
	assert.NotPanics(t, func() {
		Error("nothing configured")
	})
}
