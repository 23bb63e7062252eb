/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package client

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTerminal(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf)

	term.RenderPuzzle("A thief plants an idea.", []int{1, 4})
	term.ShowScore(0)
	term.ShowScore(0)
	term.ShowTimer(59)
	term.ShowTimer(45)
	term.ShowFeedback("Correct! +950", Success)

	out := buf.String()
	assert.Contains(t, out, "A [REDACTED] plants an [REDACTED]")
	assert.Equal(t, 1, strings.Count(out, "Score: 0"))
	assert.NotContains(t, out, "59s left")
	assert.Contains(t, out, "45s left")
	assert.Contains(t, out, "[+] Correct! +950")
}
