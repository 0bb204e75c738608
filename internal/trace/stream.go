package trace

import (
	"io"
	"sync"
)

// StreamTracer writes events immediately to an io.Writer.
type StreamTracer struct {
	mu     sync.Mutex
	w      io.Writer
	level  Level
	format Format
	rules  map[string]struct{} // nil: все правила
}

func NewStreamTracer(w io.Writer, level Level, format Format) *StreamTracer {
	return &StreamTracer{w: w, level: level, format: format}
}

// OnlyRules limits rule-scope events to the given rule keys. Coarser scopes
// are not affected. No keys means every rule.
func (t *StreamTracer) OnlyRules(keys ...string) *StreamTracer {
	if len(keys) == 0 {
		t.rules = nil
		return t
	}
	t.rules = make(map[string]struct{}, len(keys))
	for _, k := range keys {
		t.rules[k] = struct{}{}
	}
	return t
}

// Emit writes an event; write errors are ignored so tracing never fails a run.
func (t *StreamTracer) Emit(ev *Event) {
	if !t.level.ShouldEmit(ev.Scope) && ev.Kind != KindHeartbeat {
		return
	}
	if t.rules != nil && ev.Scope == ScopeRule {
		if _, ok := t.rules[ev.Name]; !ok {
			return
		}
	}
	data := FormatEvent(ev, t.format)

	t.mu.Lock()
	defer t.mu.Unlock()
	_, _ = t.w.Write(data) //nolint:errcheck
}

func (t *StreamTracer) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if flusher, ok := t.w.(interface{ Flush() error }); ok {
		return flusher.Flush()
	}
	return nil
}

// Close flushes and closes the writer if it implements io.Closer.
func (t *StreamTracer) Close() error {
	if err := t.Flush(); err != nil {
		return err
	}
	if closer, ok := t.w.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (t *StreamTracer) Level() Level  { return t.level }
func (t *StreamTracer) Enabled() bool { return t.level > LevelOff }
