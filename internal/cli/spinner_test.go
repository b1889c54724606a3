package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

// captureSpinner creates a spinner that writes its frames to buf.
func captureSpinner(ctx context.Context, buf *bytes.Buffer, message string) *Spinner {
	s := newSpinnerWithContext(ctx, message)
	s.out = buf
	return s
}

func TestSpinnerBasic(t *testing.T) {
	var buf bytes.Buffer
	s := captureSpinner(context.Background(), &buf, "Rendering svg...")
	s.Start()
	time.Sleep(200 * time.Millisecond)
	s.Stop()

	if !strings.Contains(buf.String(), "Rendering svg...") {
		t.Errorf("spinner output = %q, should contain the message", buf.String())
	}
	if !s.Cancelled() {
		t.Error("Cancelled() = false after Stop, want true")
	}
}

func TestSpinnerWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var buf bytes.Buffer
	s := captureSpinner(ctx, &buf, "Laying out 3 nodes...")
	s.Start()
	cancel()

	time.Sleep(100 * time.Millisecond)
	if !s.Cancelled() {
		t.Error("Spinner should be cancelled after context cancellation")
	}
	s.Stop()
}

func TestSpinnerWithTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	var buf bytes.Buffer
	s := captureSpinner(ctx, &buf, "Waiting...")
	s.Start()

	time.Sleep(100 * time.Millisecond)
	if !s.Cancelled() {
		t.Error("Spinner should be cancelled after context timeout")
	}
	s.Stop()
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	var buf bytes.Buffer
	s := captureSpinner(context.Background(), &buf, "Stopping...")
	s.Start()

	s.Stop()
	s.Stop()
	s.Stop()
}

func TestSpinnerStopWithMessage(t *testing.T) {
	var out bytes.Buffer
	oldOut := stdout
	stdout = &out
	t.Cleanup(func() { stdout = oldOut })

	tests := []struct {
		name string
		stop func(*Spinner)
		want string
	}{
		{"success", func(s *Spinner) { s.StopWithSuccess("Done!") }, iconSuccess + " Done!"},
		{"error", func(s *Spinner) { s.StopWithError("Failed!") }, iconError + " Failed!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out.Reset()
			var buf bytes.Buffer
			s := captureSpinner(context.Background(), &buf, "Working...")
			s.Start()
			time.Sleep(50 * time.Millisecond)
			tt.stop(s)

			if !strings.Contains(out.String(), tt.want) {
				t.Errorf("output = %q, want %q", out.String(), tt.want)
			}
		})
	}
}

func TestSpinnerClearsLine(t *testing.T) {
	var buf bytes.Buffer
	s := captureSpinner(context.Background(), &buf, "Wide message")
	s.Stop()

	want := "\r" + strings.Repeat(" ", len("Wide message")+2) + "\r"
	if !strings.HasSuffix(buf.String(), want) {
		t.Errorf("clear output = %q, want suffix %q", buf.String(), want)
	}
}
