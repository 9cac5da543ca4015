package app

import (
	"strings"
	"sync"
)

const maxLogLines = 1000

// LogBuffer keeps the most recent log lines for the debug window.
// It implements io.Writer so it can be attached to the logger.
type LogBuffer struct {
	mu       sync.Mutex
	lines    []string
	onChange func(text string)
}

func NewLogBuffer() *LogBuffer {
	return &LogBuffer{lines: make([]string, 0)}
}

func (b *LogBuffer) Write(p []byte) (int, error) {
	for _, line := range strings.Split(strings.TrimSpace(string(p)), "\n") {
		if line != "" {
			b.add(line)
		}
	}
	return len(p), nil
}

func (b *LogBuffer) add(line string) {
	b.mu.Lock()
	b.lines = append(b.lines, line)
	if len(b.lines) > maxLogLines {
		b.lines = b.lines[len(b.lines)-maxLogLines:]
	}
	text, notify := strings.Join(b.lines, "\n"), b.onChange
	b.mu.Unlock()

	if notify != nil {
		notify(text)
	}
}

// Lines returns a copy of the buffered lines.
func (b *LogBuffer) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string{}, b.lines...)
}

// Clear drops all buffered lines.
func (b *LogBuffer) Clear() {
	b.mu.Lock()
	b.lines = b.lines[:0]
	notify := b.onChange
	b.mu.Unlock()

	if notify != nil {
		notify("")
	}
}

// SetOnChange registers fn to receive the full buffered text on change.
func (b *LogBuffer) SetOnChange(fn func(text string)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onChange = fn
}
