package logview

// Capacity is the number of entries the viewer keeps.
const Capacity = 256

// Entry is one received line and its color class. Text is the line exactly as
// it arrived, escapes included.
type Entry struct {
	Class Class
	Text  string
}

// NewEntry classifies line and wraps it.
func NewEntry(line string) Entry {
	return Entry{Class: Classify(line), Text: line}
}

// Buffer is a fixed-capacity FIFO ring. Appending to a full buffer drops
// the oldest entry.
type Buffer struct {
	items []Entry
	head  int
	size  int
}

// NewBuffer returns an empty buffer. Capacities below 1 use Capacity.
func NewBuffer(capacity int) *Buffer {
	if capacity < 1 {
		capacity = Capacity
	}
	return &Buffer{items: make([]Entry, capacity)}
}

// Append adds e at the back and reports whether the oldest entry was evicted
// to make room.
func (b *Buffer) Append(e Entry) bool {
	c := len(b.items)
	if b.size < c {
		b.items[(b.head+b.size)%c] = e
		b.size++
		return false
	}
	b.items[b.head] = e
	b.head = (b.head + 1) % c
	return true
}

// Len returns the number of buffered entries.
func (b *Buffer) Len() int { return b.size }

// Cap returns the buffer capacity.
func (b *Buffer) Cap() int { return len(b.items) }

// At returns the i-th entry, oldest first. It panics when i is out of range.
func (b *Buffer) At(i int) Entry {
	if i < 0 || i >= b.size {
		panic("logview: buffer index out of range")
	}
	return b.items[(b.head+i)%len(b.items)]
}

// Entries returns a copy of the buffered entries, oldest first.
func (b *Buffer) Entries() []Entry {
	out := make([]Entry, b.size)
	for i := range out {
		out[i] = b.items[(b.head+i)%len(b.items)]
	}
	return out
}

// Clear empties the buffer.
func (b *Buffer) Clear() {
	clear(b.items)
	b.head = 0
	b.size = 0
}
