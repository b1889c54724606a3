package graphsync

import (
	"sync"
	"testing"
	"time"
)

type recorder struct {
	mu   sync.Mutex
	got  []string
	done chan struct{}
}

func newRecorder() *recorder { return &recorder{done: make(chan struct{}, 16)} }

func (r *recorder) fn(s string) {
	r.mu.Lock()
	r.got = append(r.got, s)
	r.mu.Unlock()
	r.done <- struct{}{}
}

func (r *recorder) values() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.got...)
}

func TestDebouncer_TrailingEdge(t *testing.T) {
	rec := newRecorder()
	d := NewDebouncer(20*time.Millisecond, rec.fn)

	d.Push("g")
	d.Push("gr")
	d.Push("graph")

	select {
	case <-rec.done:
	case <-time.After(time.Second):
		t.Fatal("debounced call never happened")
	}
	time.Sleep(50 * time.Millisecond)

	got := rec.values()
	if len(got) != 1 || got[0] != "graph" {
		t.Errorf("calls = %q, want [graph]", got)
	}
}

func TestDebouncer_Flush(t *testing.T) {
	rec := newRecorder()
	d := NewDebouncer(time.Hour, rec.fn)

	if d.Flush() {
		t.Error("Flush() with nothing pending = true")
	}
	d.Push("a")
	if !d.Flush() {
		t.Error("Flush() = false, want true")
	}
	if got := rec.values(); len(got) != 1 || got[0] != "a" {
		t.Errorf("calls = %q, want [a]", got)
	}
	if d.Flush() {
		t.Error("second Flush() = true")
	}
}

func TestDebouncer_Stop(t *testing.T) {
	rec := newRecorder()
	d := NewDebouncer(10*time.Millisecond, rec.fn)
	d.Push("x")
	d.Stop()
	time.Sleep(40 * time.Millisecond)
	if got := rec.values(); len(got) != 0 {
		t.Errorf("calls after Stop = %q, want none", got)
	}
}

func TestNewDebouncer_DefaultDelay(t *testing.T) {
	if d := NewDebouncer(0, func(string) {}); d.delay != DefaultDebounce {
		t.Errorf("delay = %v, want %v", d.delay, DefaultDebounce)
	}
}
