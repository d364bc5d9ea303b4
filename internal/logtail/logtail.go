package logtail

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

const (
	// DefaultBacklog matches the log panel's capacity.
	DefaultBacklog = 256

	defaultPollEvery = 250 * time.Millisecond
)

// File follows a console capture on disk. It satisfies logview.Source.
type File struct {
	Path      string
	Backlog   int           // lines replayed from the end of the file; zero uses DefaultBacklog
	PollEvery time.Duration // zero uses 250ms
}

// Stream delivers the last Backlog complete lines of the file, then every
// line appended afterwards until ctx is cancelled. A trailing line without a
// newline is held back until it is completed. If the file shrinks it is read
// again from the start.
func (f File) Stream(ctx context.Context, deliver func(line string)) error {
	file, err := os.Open(f.Path)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	backlog := f.Backlog
	if backlog <= 0 {
		backlog = DefaultBacklog
	}
	poll := f.PollEvery
	if poll <= 0 {
		poll = defaultPollEvery
	}
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	reader := bufio.NewReaderSize(file, 64*1024)
	tail := newRing(backlog)
	following := false
	var pos int64
	var pending strings.Builder

	for {
		if ctx.Err() != nil {
			return nil
		}

		chunk, err := reader.ReadString('\n')
		pos += int64(len(chunk))
		pending.WriteString(chunk)
		if err == nil {
			line := strings.TrimRight(pending.String(), "\r\n")
			pending.Reset()
			if following {
				deliver(line)
			} else {
				tail.push(line)
			}
			continue
		}
		if !errors.Is(err, io.EOF) {
			return fmt.Errorf("read log: %w", err)
		}

		if !following {
			for _, line := range tail.lines() {
				deliver(line)
			}
			following = true
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		info, err := file.Stat()
		if err != nil {
			return fmt.Errorf("stat log: %w", err)
		}
		if info.Size() < pos {
			if _, err := file.Seek(0, io.SeekStart); err != nil {
				return fmt.Errorf("rewind log: %w", err)
			}
			reader.Reset(file)
			pending.Reset()
			pos = 0
		}
	}
}

// ring keeps the newest size lines.
type ring struct {
	buf   []string
	next  int
	count int
}

func newRing(size int) *ring {
	return &ring{buf: make([]string, size)}
}

func (r *ring) push(line string) {
	r.buf[r.next] = line
	r.next = (r.next + 1) % len(r.buf)
	if r.count < len(r.buf) {
		r.count++
	}
}

// lines returns the kept lines oldest first.
func (r *ring) lines() []string {
	out := make([]string, r.count)
	if r.count < len(r.buf) {
		copy(out, r.buf[:r.count])
		return out
	}
	for i := range out {
		out[i] = r.buf[(r.next+i)%len(r.buf)]
	}
	return out
}
