package flora

import "fmt"

// Logger is the logging hook injectable into the flora package. The
// package never logs on its own; callers wire a real logger (the server's
// leveled logger) or leave the default no-op in place.
type Logger interface {
	Debugf(format string, v ...any)
	Infof(format string, v ...any)
	Warnf(format string, v ...any)
	Errorf(format string, v ...any)
}

// NoOpLogger discards everything. It is the default for gardens and
// managers constructed without a logger.
type NoOpLogger struct{}

func (n *NoOpLogger) Debugf(format string, v ...any) {}
func (n *NoOpLogger) Infof(format string, v ...any)  {}
func (n *NoOpLogger) Warnf(format string, v ...any)  {}
func (n *NoOpLogger) Errorf(format string, v ...any) {}

// NewNoOpLogger creates a no-op logger.
func NewNoOpLogger() Logger {
	return &NoOpLogger{}
}

// prefixLogger tags every line with a fixed prefix, used by gardens to
// mark their ID in shared logs.
type prefixLogger struct {
	prefix string
	next   Logger
}

// WithPrefix returns a logger that prepends "prefix: " to every message
// before handing it to next. A nil next falls back to the no-op logger.
func WithPrefix(next Logger, prefix string) Logger {
	if next == nil {
		next = NewNoOpLogger()
	}
	return &prefixLogger{prefix: prefix, next: next}
}

func (p *prefixLogger) Debugf(format string, v ...any) {
	p.next.Debugf("%s: %s", p.prefix, fmt.Sprintf(format, v...))
}

func (p *prefixLogger) Infof(format string, v ...any) {
	p.next.Infof("%s: %s", p.prefix, fmt.Sprintf(format, v...))
}

func (p *prefixLogger) Warnf(format string, v ...any) {
	p.next.Warnf("%s: %s", p.prefix, fmt.Sprintf(format, v...))
}

func (p *prefixLogger) Errorf(format string, v ...any) {
	p.next.Errorf("%s: %s", p.prefix, fmt.Sprintf(format, v...))
}
