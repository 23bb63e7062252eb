/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package session

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Seednode/cineguess/internal/domain"
	"github.com/Seednode/cineguess/internal/movie"
	"github.com/Seednode/cineguess/internal/store"
)

const (
	CodeLength   = 4
	codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	codeAttempts = 8

	MaxPlayers        = 16
	MaxUsernameLength = 32
	MaxRating         = 10

	MsgTimesUp        = "time's up"
	MsgAlreadyGuessed = "already guessed"
	MsgRoundOver      = "round is over"
)

// Store is the room document store the manager coordinates through.
type Store interface {
	Create(ctx context.Context, room *domain.Room) error
	Get(ctx context.Context, code string) (*domain.Room, error)
	Update(ctx context.Context, code string, fn func(*domain.Room) error) (*domain.Room, error)
}

type Selector interface {
	Pick(ctx context.Context, f movie.Filter) movie.Movie
}

// Manager runs the room lifecycle. It keeps no room state of its own:
// every cross-player decision is made inside a store update.
type Manager struct {
	store     Store
	selector  Selector
	evaluator Evaluator
	log       zerolog.Logger

	now     func() time.Time
	newCode func() (string, error)
	newID   func() string
}

func NewManager(s Store, sel Selector, log zerolog.Logger) *Manager {
	return &Manager{
		store:     s,
		selector:  sel,
		evaluator: Exact{},
		log:       log.With().Str("module", "session").Logger(),
		now:       time.Now,
		newCode:   NewRoomCode,
		newID:     uuid.NewString,
	}
}

// NewRoomCode draws CodeLength symbols uniformly from a 32 symbol alphabet
// without I, O, 0 or 1.
func NewRoomCode() (string, error) {
	buf := make([]byte, CodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	// 256 is a multiple of 32, so the modulo is unbiased.
	for i := range buf {
		buf[i] = codeAlphabet[int(buf[i])%len(codeAlphabet)]
	}

	return string(buf), nil
}

type CreateResult struct {
	RoomCode string `json:"roomCode"`
	PlayerID string `json:"playerId"`
}

type GuessResult struct {
	Correct     bool   `json:"correct"`
	ScoreEarned int    `json:"scoreEarned,omitempty"`
	Message     string `json:"message,omitempty"`
}

type RoundResult struct {
	Success  bool `json:"success,omitempty"`
	Round    int  `json:"round,omitempty"`
	GameOver bool `json:"gameOver,omitempty"`
}

func validateUsername(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", newError(KindInvalidArgument, "a username is required")
	}
	if utf8.RuneCountInString(name) > MaxUsernameLength {
		return "", newError(KindInvalidArgument, "username must be at most %d characters", MaxUsernameLength)
	}
	return name, nil
}

func validateConfig(cfg domain.Config) (domain.Config, error) {
	cfg.Genre = strings.TrimSpace(cfg.Genre)

	switch {
	case cfg.MinYear < 0 || cfg.MaxYear < 0:
		return cfg, newError(KindInvalidArgument, "years must not be negative")
	case cfg.MinYear != 0 && cfg.MaxYear != 0 && cfg.MinYear > cfg.MaxYear:
		return cfg, newError(KindInvalidArgument, "minYear %d is after maxYear %d", cfg.MinYear, cfg.MaxYear)
	case cfg.MinRating < 0 || cfg.MinRating > MaxRating:
		return cfg, newError(KindInvalidArgument, "minRating must be between 0 and %d", MaxRating)
	case cfg.TotalRounds < 0 || cfg.TotalRounds > domain.MaxTotalRounds:
		return cfg, newError(KindInvalidArgument, "totalRounds must be between 1 and %d", domain.MaxTotalRounds)
	}

	if cfg.TotalRounds == 0 {
		cfg.TotalRounds = domain.DefaultTotalRounds
	}

	return cfg, nil
}

func filterOf(cfg domain.Config) movie.Filter {
	return movie.Filter{
		Genre:     cfg.Genre,
		MinYear:   cfg.MinYear,
		MaxYear:   cfg.MaxYear,
		MinRating: cfg.MinRating,
	}
}

func (m *Manager) get(ctx context.Context, code string) (*domain.Room, error) {
	room, err := m.store.Get(ctx, code)
	if errors.Is(err, store.ErrNotFound) {
		return nil, newError(KindNotFound, "room %q not found", code)
	}
	if err != nil {
		return nil, fmt.Errorf("load room %s: %w", code, err)
	}
	return room, nil
}

func (m *Manager) update(ctx context.Context, code string, fn func(*domain.Room) error) (*domain.Room, error) {
	room, err := m.store.Update(ctx, code, fn)
	if errors.Is(err, store.ErrNotFound) {
		return nil, newError(KindNotFound, "room %q not found", code)
	}
	return room, err
}

// CreateRoom opens a room in the waiting state with the caller as host.
func (m *Manager) CreateRoom(ctx context.Context, username string, cfg domain.Config) (CreateResult, error) {
	username, err := validateUsername(username)
	if err != nil {
		return CreateResult{}, err
	}

	cfg, err = validateConfig(cfg)
	if err != nil {
		return CreateResult{}, err
	}

	hostID := m.newID()
	now := m.now()

	for attempt := 0; attempt < codeAttempts; attempt++ {
		code, err := m.newCode()
		if err != nil {
			return CreateResult{}, fmt.Errorf("generate room code: %w", err)
		}

		room := &domain.Room{
			Code:      code,
			CreatedAt: now.UnixMilli(),
			Config:    cfg,
			Status:    domain.StatusWaiting,
			Players: map[string]*domain.Player{
				hostID: {
					ID:       hostID,
					Username: username,
					IsHost:   true,
					IsOnline: true,
				},
			},
			GameState: domain.GameState{
				Round:           1,
				TotalRounds:     cfg.TotalRounds,
				CorrectGuessers: []string{},
			},
		}

		err = m.store.Create(ctx, room)
		if errors.Is(err, store.ErrExists) {
			m.log.Debug().Str("room", code).Msg("room code collision, retrying")
			continue
		}
		if err != nil {
			return CreateResult{}, fmt.Errorf("create room: %w", err)
		}

		m.log.Info().Str("room", code).Str("host", username).Msg("room created")

		return CreateResult{RoomCode: code, PlayerID: hostID}, nil
	}

	return CreateResult{}, fmt.Errorf("no free room code after %d attempts", codeAttempts)
}

// JoinRoom adds a non-host player to a waiting room.
func (m *Manager) JoinRoom(ctx context.Context, username, code string) (string, error) {
	username, err := validateUsername(username)
	if err != nil {
		return "", err
	}

	code = domain.NormalizeCode(code)
	if code == "" {
		return "", newError(KindInvalidArgument, "a room code is required")
	}

	id := m.newID()

	_, err = m.update(ctx, code, func(r *domain.Room) error {
		if r.Status != domain.StatusWaiting {
			return newError(KindFailedPrecondition, "room is not open for joining")
		}
		if len(r.Players) >= MaxPlayers {
			return newError(KindFailedPrecondition, "room is full")
		}

		r.Players[id] = &domain.Player{
			ID:       id,
			Username: username,
			IsOnline: true,
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	m.log.Info().Str("room", code).Str("player", username).Msg("player joined")

	return id, nil
}

func (m *Manager) requireHost(room *domain.Room, playerID, action string) error {
	if !room.IsHost(playerID) {
		return newError(KindPermissionDenied, "only the host can %s", action)
	}
	return nil
}

func beginRound(r *domain.Room, round int, mv movie.Movie, now time.Time) {
	r.Status = domain.StatusPlaying
	r.GameState.Round = round
	r.GameState.CurrentMovieID = mv.ID
	r.GameState.MovieData = domain.MovieData{
		Description:       mv.Description,
		HiddenWordIndices: append([]int{}, mv.HiddenWordIndices...),
	}
	r.GameState.SecretTitle = mv.Title
	r.GameState.RoundEndTime = now.Add(domain.RoundDuration).UnixMilli()
	r.GameState.CorrectGuessers = []string{}
}

// unchanged reports whether r is still in the state seen before a movie
// was selected for it.
func unchanged(r, seen *domain.Room) bool {
	return r.Status == seen.Status &&
		r.GameState.Round == seen.GameState.Round &&
		r.GameState.CurrentMovieID == seen.GameState.CurrentMovieID
}

// StartGame begins round 1. A concurrent duplicate call that loses the race
// leaves the room as the winner set it, and calling it on a game already in
// progress changes nothing.
func (m *Manager) StartGame(ctx context.Context, code, playerID string) error {
	code = domain.NormalizeCode(code)

	seen, err := m.get(ctx, code)
	if err != nil {
		return err
	}
	if err := m.requireHost(seen, playerID, "start the game"); err != nil {
		return err
	}
	switch seen.Status {
	case domain.StatusGameOver:
		return newError(KindFailedPrecondition, "game is over")
	case domain.StatusPlaying, domain.StatusRoundEnd:
		m.log.Debug().Str("room", code).Int("round", seen.GameState.Round).Msg("game already started")
		return nil
	}

	mv := m.selector.Pick(ctx, filterOf(seen.Config))
	now := m.now()

	started := false
	_, err = m.update(ctx, code, func(r *domain.Room) error {
		if !unchanged(r, seen) || r.Status != domain.StatusWaiting {
			return store.ErrSkip
		}
		beginRound(r, 1, mv, now)
		started = true
		return nil
	})
	if err != nil {
		return err
	}

	if started {
		m.log.Info().Str("room", code).Str("movie", mv.ID).Msg("game started")
	}

	return nil
}

// NextRound advances to the next round or ends the game after the last.
func (m *Manager) NextRound(ctx context.Context, code, playerID string) (RoundResult, error) {
	code = domain.NormalizeCode(code)

	seen, err := m.get(ctx, code)
	if err != nil {
		return RoundResult{}, err
	}
	if err := m.requireHost(seen, playerID, "advance the round"); err != nil {
		return RoundResult{}, err
	}

	switch seen.Status {
	case domain.StatusGameOver:
		return RoundResult{GameOver: true}, nil
	case domain.StatusWaiting:
		return RoundResult{}, newError(KindFailedPrecondition, "game has not started")
	}

	if seen.GameState.Round >= seen.GameState.TotalRounds {
		_, err := m.update(ctx, code, func(r *domain.Room) error {
			if r.Status == domain.StatusWaiting {
				return store.ErrSkip
			}
			r.Status = domain.StatusGameOver
			return nil
		})
		if err != nil {
			return RoundResult{}, err
		}

		m.log.Info().Str("room", code).Int("rounds", seen.GameState.TotalRounds).Msg("game over")

		return RoundResult{GameOver: true}, nil
	}

	next := seen.GameState.Round + 1
	mv := m.selector.Pick(ctx, filterOf(seen.Config))
	now := m.now()

	advanced := false
	room, err := m.update(ctx, code, func(r *domain.Room) error {
		if !unchanged(r, seen) {
			return store.ErrSkip
		}
		beginRound(r, next, mv, now)
		advanced = true
		return nil
	})
	if err != nil {
		return RoundResult{}, err
	}

	if !advanced {
		m.log.Debug().Str("room", code).Int("round", room.GameState.Round).Msg("round already advanced")
		if room.Status == domain.StatusGameOver {
			return RoundResult{GameOver: true}, nil
		}
	} else {
		m.log.Info().Str("room", code).Int("round", next).Str("movie", mv.ID).Msg("next round")
	}

	return RoundResult{Success: true, Round: room.GameState.Round}, nil
}

// SubmitGuess checks a guess against the current secret title and, when it
// matches, credits the player exactly once for this round.
func (m *Manager) SubmitGuess(ctx context.Context, code, playerID, guess string) (GuessResult, error) {
	code = domain.NormalizeCode(code)

	seen, err := m.get(ctx, code)
	if err != nil {
		return GuessResult{}, err
	}
	if _, ok := seen.Players[playerID]; !ok {
		return GuessResult{}, newError(KindPermissionDenied, "not a member of room %s", code)
	}

	now := m.now().UnixMilli()

	if verdict, done := precheck(seen, playerID, now); done {
		return verdict, nil
	}

	if m.evaluator.Evaluate(guess, seen.GameState.SecretTitle) != Correct {
		return GuessResult{Correct: false}, nil
	}

	var (
		result  GuessResult
		roundUp bool
	)

	_, err = m.update(ctx, code, func(r *domain.Room) error {
		if r.GameState.Round != seen.GameState.Round || r.GameState.CurrentMovieID != seen.GameState.CurrentMovieID {
			result = GuessResult{Correct: false, Message: MsgRoundOver}
			return store.ErrSkip
		}
		if verdict, done := precheck(r, playerID, now); done {
			result = verdict
			return store.ErrSkip
		}

		earned := Score(r.GameState.RoundEndTime, now)

		p, ok := r.Players[playerID]
		if !ok {
			return newError(KindPermissionDenied, "not a member of room %s", code)
		}
		p.Score += earned
		r.GameState.CorrectGuessers = append(r.GameState.CorrectGuessers, playerID)

		if len(r.GameState.CorrectGuessers) >= len(r.Players) {
			r.Status = domain.StatusRoundEnd
			roundUp = true
		}

		result = GuessResult{Correct: true, ScoreEarned: earned}
		return nil
	})
	if err != nil {
		return GuessResult{}, err
	}

	if result.ScoreEarned > 0 {
		m.log.Info().Str("room", code).Str("player", playerID).Int("score", result.ScoreEarned).Msg("correct guess")
	}
	if roundUp {
		m.log.Info().Str("room", code).Int("round", seen.GameState.Round).Msg("everyone guessed, round ended")
	}

	return result, nil
}

// precheck returns the answer for guesses that must not touch the room.
func precheck(r *domain.Room, playerID string, now int64) (GuessResult, bool) {
	switch {
	case now > r.GameState.RoundEndTime:
		return GuessResult{Correct: false, Message: MsgTimesUp}, true
	case r.HasGuessed(playerID):
		return GuessResult{Correct: true, Message: MsgAlreadyGuessed}, true
	case r.Status != domain.StatusPlaying:
		return GuessResult{Correct: false, Message: MsgRoundOver}, true
	}
	return GuessResult{}, false
}

// SetOnline records whether playerID currently holds a live subscription.
func (m *Manager) SetOnline(ctx context.Context, code, playerID string, online bool) error {
	_, err := m.update(ctx, domain.NormalizeCode(code), func(r *domain.Room) error {
		p, ok := r.Players[playerID]
		if !ok || p.IsOnline == online {
			return store.ErrSkip
		}
		p.IsOnline = online
		return nil
	})
	return err
}

// Room returns the client-visible snapshot of a room.
func (m *Manager) Room(ctx context.Context, code string) (domain.Snapshot, error) {
	room, err := m.get(ctx, domain.NormalizeCode(code))
	if err != nil {
		return domain.Snapshot{}, err
	}
	return room.Snapshot(), nil
}
