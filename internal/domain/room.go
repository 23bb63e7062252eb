/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package domain

import (
	"slices"
	"strings"
	"time"
)

type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusPlaying  Status = "playing"
	StatusRoundEnd Status = "round_end"
	StatusGameOver Status = "game_over"
)

const (
	// RoundDuration is the fixed length of every round.
	RoundDuration = 60 * time.Second

	DefaultTotalRounds = 5
	MaxTotalRounds     = 20
)

// Config holds the filters and round count chosen by the host at creation.
type Config struct {
	Genre       string  `json:"genre,omitempty"`
	MinYear     int     `json:"minYear,omitempty"`
	MaxYear     int     `json:"maxYear,omitempty"`
	MinRating   float64 `json:"minRating,omitempty"`
	TotalRounds int     `json:"totalRounds,omitempty"`
}

type Player struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	IsHost   bool   `json:"isHost"`
	Score    int    `json:"score"`
	IsOnline bool   `json:"isOnline"`
}

type MovieData struct {
	Description       string `json:"description"`
	HiddenWordIndices []int  `json:"hiddenWordIndices"`
}

type GameState struct {
	Round           int       `json:"round"`
	TotalRounds     int       `json:"totalRounds"`
	CurrentMovieID  string    `json:"currentMovieId,omitempty"`
	MovieData       MovieData `json:"movieData"`
	SecretTitle     string    `json:"-"`
	RoundEndTime    int64     `json:"roundEndTime"`
	CorrectGuessers []string  `json:"correctGuessers"`
}

// Room is the server-side document. It is never sent to clients as is;
// use Snapshot for anything that leaves the process.
type Room struct {
	Code      string             `json:"code"`
	CreatedAt int64              `json:"createdAt"`
	UpdatedAt time.Time          `json:"-"`
	Config    Config             `json:"config"`
	Status    Status             `json:"status"`
	Players   map[string]*Player `json:"players"`
	GameState GameState          `json:"gameState"`
}

func (r *Room) Host() *Player {
	for _, p := range r.Players {
		if p.IsHost {
			return p
		}
	}
	return nil
}

func (r *Room) IsHost(playerID string) bool {
	p, ok := r.Players[playerID]
	return ok && p.IsHost
}

func (r *Room) HasGuessed(playerID string) bool {
	return slices.Contains(r.GameState.CorrectGuessers, playerID)
}

// Resolved reports whether the current round's title may be shown.
func (r *Room) Resolved() bool {
	return r.Status == StatusRoundEnd || r.Status == StatusGameOver
}

// Clone returns a deep copy so callers can never alias store state.
func (r *Room) Clone() *Room {
	if r == nil {
		return nil
	}

	out := *r
	out.Players = make(map[string]*Player, len(r.Players))
	for id, p := range r.Players {
		cp := *p
		out.Players[id] = &cp
	}
	out.GameState.CorrectGuessers = slices.Clone(r.GameState.CorrectGuessers)
	out.GameState.MovieData.HiddenWordIndices = slices.Clone(r.GameState.MovieData.HiddenWordIndices)

	return &out
}

// Snapshot is the client-visible copy of a room.
type Snapshot struct {
	Code          string            `json:"code"`
	CreatedAt     int64             `json:"createdAt"`
	Config        Config            `json:"config"`
	Status        Status            `json:"status"`
	Players       map[string]Player `json:"players"`
	GameState     GameState         `json:"gameState"`
	RevealedTitle string            `json:"revealedTitle,omitempty"`
}

func (r *Room) Snapshot() Snapshot {
	c := r.Clone()

	players := make(map[string]Player, len(c.Players))
	for id, p := range c.Players {
		players[id] = *p
	}

	s := Snapshot{
		Code:      c.Code,
		CreatedAt: c.CreatedAt,
		Config:    c.Config,
		Status:    c.Status,
		Players:   players,
		GameState: c.GameState,
	}
	if c.Resolved() {
		s.RevealedTitle = c.GameState.SecretTitle
	}
	s.GameState.SecretTitle = ""
	if s.GameState.CorrectGuessers == nil {
		s.GameState.CorrectGuessers = []string{}
	}

	return s
}

func (s Snapshot) HasGuessed(playerID string) bool {
	return slices.Contains(s.GameState.CorrectGuessers, playerID)
}

// NormalizeCode upper-cases and trims a user-entered room code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
