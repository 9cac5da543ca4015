package app

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogBufferKeepsRecentLines(t *testing.T) {
	b := NewLogBuffer()
	for i := 0; i < maxLogLines+5; i++ {
		fmt.Fprintf(b, "line %d\n", i)
	}

	lines := b.Lines()
	assert.Len(t, lines, maxLogLines)
	assert.Equal(t, "line 5", lines[0])
	assert.Equal(t, fmt.Sprintf("line %d", maxLogLines+4), lines[len(lines)-1])
}

func TestLogBufferNotifiesAndClears(t *testing.T) {
	b := NewLogBuffer()
	var last string
	b.SetOnChange(func(text string) { last = text })

	_, _ = b.Write([]byte("first\nsecond\n"))
	assert.Equal(t, "first\nsecond", last)

	b.Clear()
	assert.Empty(t, last)
	assert.Empty(t, b.Lines())
}
