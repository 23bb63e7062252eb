/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package client

import (
	"fmt"
	"io"
	"sync"

	"github.com/Seednode/cineguess/internal/movie"
)

// Terminal is a line-oriented UI. Countdown output is throttled so the
// screen is not flooded once a second.
type Terminal struct {
	mu  sync.Mutex
	out io.Writer

	score int
}

func NewTerminal(out io.Writer) *Terminal {
	return &Terminal{out: out, score: -1}
}

func (t *Terminal) printf(format string, args ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()

	fmt.Fprintf(t.out, format+"\n", args...)
}

func (t *Terminal) RenderPuzzle(description string, hidden []int) {
	t.printf("\n%s\n", movie.Render(movie.Words(description, hidden)))
}

func (t *Terminal) SetInput(bool) {}

func (t *Terminal) SetControl(c Control) {
	switch c {
	case ControlGuess:
		t.printf("Type your guess and press enter.")
	case ControlStart:
		t.printf("Press enter to start the game.")
	case ControlNext:
		t.printf("Press enter to start the next round.")
	case ControlWaiting:
		t.printf("Waiting...")
	}
}

func (t *Terminal) ShowFeedback(msg string, kind Feedback) {
	switch kind {
	case Success:
		t.printf("[+] %s", msg)
	case Failure:
		t.printf("[-] %s", msg)
	default:
		t.printf("[*] %s", msg)
	}
}

func (t *Terminal) ClearFeedback() {}

func (t *Terminal) ShowTimer(secondsLeft int) {
	if secondsLeft%15 == 0 || secondsLeft <= 5 {
		t.printf("%ds left", secondsLeft)
	}
}

func (t *Terminal) ShowScore(score int) {
	if score == t.score {
		return
	}
	t.score = score
	t.printf("Score: %d", score)
}
