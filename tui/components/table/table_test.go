package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewStyledTable(t *testing.T) {
	opts := DefaultOptions()
	opts.Highlight = 1
	opts.MuteBefore = true

	out := NewStyledTable(opts).
		Headers("#", "Color").
		Row("1", "Red").
		Row("2", "Blue").
		String()

	assert.Contains(t, out, "Color")
	assert.Contains(t, out, "Red")
	assert.Contains(t, out, "Blue")
}
