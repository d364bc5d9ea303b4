package logtail

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

// follow runs Stream in the background and returns its lines and result.
func follow(t *testing.T, f File) (<-chan string, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	lines := make(chan string, 1024)
	done := make(chan error, 1)
	go func() {
		done <- f.Stream(ctx, func(line string) { lines <- line })
	}()
	return lines, done
}

func collect(t *testing.T, lines <-chan string, n int) []string {
	t.Helper()
	got := make([]string, 0, n)
	timeout := time.After(2 * time.Second)
	for len(got) < n {
		select {
		case l := <-lines:
			got = append(got, l)
		case <-timeout:
			t.Fatalf("got %d lines, want %d: %v", len(got), n, got)
		}
	}
	return got
}

func appendFile(t *testing.T, path, data string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open for append: %v", err)
	}
	defer f.Close()
	if _, err := f.WriteString(data); err != nil {
		t.Fatalf("append: %v", err)
	}
}

func writeLines(t *testing.T, path string, from, to int) []string {
	t.Helper()
	var content strings.Builder
	var lines []string
	for i := from; i <= to; i++ {
		line := fmt.Sprintf("\x1b[0;32mI (%d) test: Line %d\x1b[0m", i, i)
		content.WriteString(line + "\r\n")
		lines = append(lines, line)
	}
	if err := os.WriteFile(path, []byte(content.String()), 0o644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}
	return lines
}

func TestStream_ReplaysBacklog(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console.log")
	all := writeLines(t, logPath, 1, 10)

	tests := []struct {
		name     string
		backlog  int
		expected []string
	}{
		{"partial", 5, all[5:]},
		{"exactly all", 10, all},
		{"more than exists", 20, all},
		{"default", 0, all},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines, _ := follow(t, File{Path: logPath, Backlog: tt.backlog, PollEvery: 5 * time.Millisecond})
			got := collect(t, lines, len(tt.expected))
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Stream() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestStream_DefaultBacklogKeepsNewest(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console.log")
	all := writeLines(t, logPath, 1, 300)

	lines, _ := follow(t, File{Path: logPath, PollEvery: 5 * time.Millisecond})
	got := collect(t, lines, DefaultBacklog)
	if got[0] != all[44] || got[len(got)-1] != all[299] {
		t.Fatalf("first/last = %q/%q, want Line 45/Line 300", got[0], got[len(got)-1])
	}
}

func TestStream_FollowsAppendedLines(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console.log")
	writeLines(t, logPath, 1, 2)

	lines, _ := follow(t, File{Path: logPath, PollEvery: 5 * time.Millisecond})
	collect(t, lines, 2)

	appendFile(t, logPath, "W (3) stratum_task: slow\n")
	appendFile(t, logPath, "E (4) asic")
	if got := collect(t, lines, 1); got[0] != "W (3) stratum_task: slow" {
		t.Fatalf("appended line = %q", got[0])
	}

	select {
	case l := <-lines:
		t.Fatalf("partial line delivered early: %q", l)
	case <-time.After(30 * time.Millisecond):
	}

	appendFile(t, logPath, "_result: dup\n")
	if got := collect(t, lines, 1); got[0] != "E (4) asic_result: dup" {
		t.Fatalf("completed line = %q", got[0])
	}
}

func TestStream_RestartsAfterTruncate(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console.log")
	writeLines(t, logPath, 1, 20)

	lines, _ := follow(t, File{Path: logPath, PollEvery: 5 * time.Millisecond})
	collect(t, lines, 20)

	if err := os.WriteFile(logPath, []byte("I (1) boot: restarted\n"), 0o644); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	if got := collect(t, lines, 1); got[0] != "I (1) boot: restarted" {
		t.Fatalf("after truncate = %q", got[0])
	}
}

func TestStream_StopsOnCancel(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console.log")
	writeLines(t, logPath, 1, 1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- File{Path: logPath, PollEvery: 5 * time.Millisecond}.Stream(ctx, func(string) {})
	}()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Stream() error = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Stream did not return after cancel")
	}
}

func TestStream_MissingFile(t *testing.T) {
	err := File{Path: filepath.Join(t.TempDir(), "nope.log")}.Stream(context.Background(), func(string) {})
	if err == nil || !strings.Contains(err.Error(), "open log") {
		t.Fatalf("Stream() error = %v, want open log failure", err)
	}
}
