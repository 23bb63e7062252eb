/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Seednode/cineguess/internal/domain"
	"github.com/Seednode/cineguess/internal/session"
)

// ErrDisconnected is returned by Run when the snapshot stream ends.
var ErrDisconnected = errors.New("room subscription closed")

type Feedback int

const (
	Info Feedback = iota
	Success
	Failure
)

// Control is what the primary button does right now.
type Control int

const (
	ControlNone Control = iota
	ControlGuess
	ControlStart
	ControlNext
	ControlWaiting
)

// UI is everything the view draws on.
type UI interface {
	RenderPuzzle(description string, hidden []int)
	SetInput(enabled bool)
	SetControl(c Control)
	ShowFeedback(msg string, kind Feedback)
	ClearFeedback()
	ShowTimer(secondsLeft int)
	ShowScore(score int)
}

// RPC is the subset of the room operations a player invokes.
type RPC interface {
	StartGame(ctx context.Context, code, playerID string) error
	SubmitGuess(ctx context.Context, code, playerID, guess string) (session.GuessResult, error)
	NextRound(ctx context.Context, code, playerID string) (session.RoundResult, error)
}

// View reconciles local input, timer and round state with room snapshots.
// All methods must be called from one goroutine; Run provides that loop.
type View struct {
	code     string
	playerID string
	ui       UI
	rpc      RPC
	now      func() time.Time

	movieID  string
	isHost   bool
	locked   bool
	control  Control
	pending  bool
	guessing bool
	terminal bool

	// endedRound is the last round whose end was announced.
	endedRound int

	endTime  int64
	ticking  bool
	lastLeft int
}

func NewView(code, playerID string, ui UI, rpc RPC, now func() time.Time) *View {
	if now == nil {
		now = time.Now
	}
	return &View{
		code:     code,
		playerID: playerID,
		ui:       ui,
		rpc:      rpc,
		now:      now,
		locked:   true,
		lastLeft: -1,
	}
}

func (v *View) Locked() bool { return v.locked }

func (v *View) Control() Control { return v.control }

func (v *View) Terminal() bool { return v.terminal }

func (v *View) MovieID() string { return v.movieID }

func (v *View) setLocked(locked bool) {
	if v.locked == locked {
		return
	}
	v.locked = locked
	v.ui.SetInput(!locked)
}

func (v *View) setControl(c Control) {
	if v.control == c {
		return
	}
	v.control = c
	v.ui.SetControl(c)
}

// Apply derives UI state from the latest room snapshot.
func (v *View) Apply(s domain.Snapshot) {
	if v.terminal {
		return
	}

	me, ok := s.Players[v.playerID]
	if ok {
		v.isHost = me.IsHost
		v.ui.ShowScore(me.Score)
	}

	gs := s.GameState
	if gs.CurrentMovieID != "" && gs.CurrentMovieID != v.movieID {
		v.movieID = gs.CurrentMovieID
		v.ui.RenderPuzzle(gs.MovieData.Description, gs.MovieData.HiddenWordIndices)
		v.startTimer(gs.RoundEndTime)
	}

	switch s.Status {
	case domain.StatusGameOver:
		v.setLocked(true)
		v.stopTimer()
		v.setControl(ControlNone)
		v.ui.ShowFeedback(fmt.Sprintf("GAME OVER! Final score: %d", me.Score), Success)
		v.terminal = true

	case domain.StatusRoundEnd:
		v.setLocked(true)
		v.stopTimer()

		if v.endedRound == gs.Round {
			return
		}
		v.endedRound = gs.Round

		reveal := ""
		if s.RevealedTitle != "" {
			reveal = fmt.Sprintf(" The movie was %q.", s.RevealedTitle)
		}
		if v.isHost {
			v.setControl(ControlNext)
			v.ui.ShowFeedback("Round over!"+reveal+" Start next round?", Info)
		} else {
			v.setControl(ControlWaiting)
			v.ui.ShowFeedback("Round over!"+reveal+" Waiting for host...", Info)
		}

	case domain.StatusWaiting:
		v.setLocked(true)
		if v.isHost {
			v.setControl(ControlStart)
		} else {
			v.setControl(ControlWaiting)
		}

	case domain.StatusPlaying:
		if gs.RoundEndTime != v.endTime {
			v.startTimer(gs.RoundEndTime)
		}

		if s.HasGuessed(v.playerID) {
			if !v.locked || v.control != ControlWaiting {
				v.setLocked(true)
				v.setControl(ControlWaiting)
				v.ui.ShowFeedback("Correct! Waiting for others...", Success)
			}
			return
		}

		if (v.locked || v.control != ControlGuess) && !v.guessing && v.secondsLeft() > 0 {
			v.setLocked(false)
			v.setControl(ControlGuess)
			v.ui.ClearFeedback()
		}
	}
}

func (v *View) secondsLeft() int {
	ms := v.endTime - v.now().UnixMilli()
	if ms <= 0 {
		return 0
	}
	return int((ms + 999) / 1000)
}

func (v *View) startTimer(end int64) {
	v.endTime = end
	v.ticking = true
	v.lastLeft = -1
	v.Tick()
}

func (v *View) stopTimer() {
	v.ticking = false
}

// Tick refreshes the countdown. Reaching zero locks input locally; the
// server still decides whether a guess was late.
func (v *View) Tick() {
	if !v.ticking {
		return
	}

	left := v.secondsLeft()
	if left != v.lastLeft {
		v.lastLeft = left
		v.ui.ShowTimer(left)
	}

	if left == 0 {
		v.ticking = false
		if !v.locked {
			v.setLocked(true)
			v.ui.ShowFeedback("Time's up!", Failure)
		}
	}
}

// Submit handles the primary action. It returns a function that performs
// any RPC off the loop and yields the follow-up to run back on it, or nil
// when there is nothing to send.
func (v *View) Submit(text string) func(ctx context.Context) func() {
	if v.terminal || v.pending || v.guessing {
		return nil
	}

	switch v.control {
	case ControlStart:
		v.pending = true
		return func(ctx context.Context) func() {
			err := v.rpc.StartGame(ctx, v.code, v.playerID)
			return func() { v.onStart(err) }
		}

	case ControlNext:
		v.pending = true
		v.setControl(ControlWaiting)
		return func(ctx context.Context) func() {
			res, err := v.rpc.NextRound(ctx, v.code, v.playerID)
			return func() { v.onNextRound(res, err) }
		}

	case ControlGuess:
		guess := strings.TrimSpace(text)
		if v.locked || guess == "" {
			return nil
		}
		v.guessing = true
		v.setLocked(true)
		return func(ctx context.Context) func() {
			res, err := v.rpc.SubmitGuess(ctx, v.code, v.playerID, guess)
			return func() { v.onGuess(res, err) }
		}
	}

	return nil
}

func (v *View) onStart(err error) {
	v.pending = false
	if err != nil {
		v.ui.ShowFeedback("Error starting game: "+errorMessage(err), Failure)
	}
}

func (v *View) onNextRound(_ session.RoundResult, err error) {
	v.pending = false
	if err != nil && v.control == ControlWaiting {
		v.setControl(ControlNext)
		v.ui.ShowFeedback("Error starting next round: "+errorMessage(err), Failure)
	}
}

func (v *View) onGuess(res session.GuessResult, err error) {
	v.guessing = false

	switch {
	case err != nil:
		v.unlockIfOpen()
		v.ui.ShowFeedback("Error submitting guess: "+errorMessage(err), Failure)
	case res.Correct && res.ScoreEarned > 0:
		v.ui.ShowFeedback(fmt.Sprintf("Correct! +%d", res.ScoreEarned), Success)
	case res.Correct:
		v.ui.ShowFeedback("Correct! "+res.Message, Success)
	default:
		v.unlockIfOpen()
		msg := res.Message
		if msg == "" {
			msg = "Incorrect!"
		}
		v.ui.ShowFeedback(msg, Failure)
	}
}

// unlockIfOpen re-enables input while the round can still take guesses.
func (v *View) unlockIfOpen() {
	if v.control == ControlGuess && v.secondsLeft() > 0 {
		v.setLocked(false)
	}
}

func errorMessage(err error) string {
	var e *session.Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return err.Error()
}

// Run is the single-threaded event loop: snapshots, one second ticks,
// user input and RPC completions are all handled here.
func (v *View) Run(ctx context.Context, snapshots <-chan domain.Snapshot, input <-chan string) error {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	done := make(chan func(), 4)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case s, ok := <-snapshots:
			if !ok {
				return ErrDisconnected
			}
			v.Apply(s)
			if v.terminal {
				return nil
			}

		case <-ticker.C:
			v.Tick()

		case line, ok := <-input:
			if !ok {
				return nil
			}
			if call := v.Submit(line); call != nil {
				go func() {
					follow := call(ctx)
					select {
					case done <- follow:
					case <-ctx.Done():
					}
				}()
			}

		case follow := <-done:
			follow()
		}
	}
}
