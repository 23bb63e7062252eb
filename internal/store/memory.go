/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Seednode/cineguess/internal/domain"
)

var (
	ErrNotFound = errors.New("room not found")
	ErrExists   = errors.New("room already exists")

	// ErrSkip is returned by an update function to leave the room
	// untouched without failing the call.
	ErrSkip = errors.New("skip update")
)

type entry struct {
	mu      sync.Mutex
	room    *domain.Room
	subs    map[chan *domain.Room]struct{}
	removed bool
}

// Memory is an in-process room store. Each room is guarded by its own
// mutex, so an update function sees and replaces the whole document
// atomically; readers and subscribers only ever receive copies.
type Memory struct {
	mu    sync.RWMutex
	rooms map[string]*entry
	now   func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		rooms: make(map[string]*entry),
		now:   time.Now,
	}
}

// Create inserts room unless its code is already taken.
func (s *Memory) Create(_ context.Context, room *domain.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[room.Code]; ok {
		return ErrExists
	}

	r := room.Clone()
	r.UpdatedAt = s.now()
	s.rooms[room.Code] = &entry{
		room: r,
		subs: make(map[chan *domain.Room]struct{}),
	}

	return nil
}

func (s *Memory) lookup(code string) (*entry, error) {
	s.mu.RLock()
	e, ok := s.rooms[code]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	return e, nil
}

func (s *Memory) Get(_ context.Context, code string) (*domain.Room, error) {
	e, err := s.lookup(code)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.removed {
		return nil, ErrNotFound
	}
	return e.room.Clone(), nil
}

// Update runs fn against a private copy of the room and commits the copy
// only if fn returns nil. Updates to one room are serialised. If fn returns
// ErrSkip the current room is returned with a nil error. Any other error is
// passed through and nothing is written.
func (s *Memory) Update(ctx context.Context, code string, fn func(*domain.Room) error) (*domain.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e, err := s.lookup(code)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.removed {
		return nil, ErrNotFound
	}

	next := e.room.Clone()
	if err := fn(next); err != nil {
		if errors.Is(err, ErrSkip) {
			return e.room.Clone(), nil
		}
		return nil, err
	}

	next.Code = e.room.Code
	next.UpdatedAt = s.now()
	e.room = next

	for ch := range e.subs {
		deliver(ch, next.Clone())
	}

	return next.Clone(), nil
}

// deliver keeps at most one pending snapshot per subscriber, replacing a
// stale one. Callers hold the entry lock, so they are the only writer.
func deliver(ch chan *domain.Room, r *domain.Room) {
	select {
	case ch <- r:
		return
	default:
	}

	select {
	case <-ch:
	default:
	}
	ch <- r
}

// Subscribe returns a channel that yields the current room immediately and
// the latest room after every committed update. Intermediate states may be
// skipped. The channel closes when ctx ends or the room is removed.
func (s *Memory) Subscribe(ctx context.Context, code string) (<-chan *domain.Room, error) {
	e, err := s.lookup(code)
	if err != nil {
		return nil, err
	}

	ch := make(chan *domain.Room, 1)

	e.mu.Lock()
	if e.removed {
		e.mu.Unlock()
		return nil, ErrNotFound
	}
	e.subs[ch] = struct{}{}
	ch <- e.room.Clone()
	e.mu.Unlock()

	go func() {
		<-ctx.Done()

		e.mu.Lock()
		defer e.mu.Unlock()

		if _, ok := e.subs[ch]; ok {
			delete(e.subs, ch)
			close(ch)
		}
	}()

	return ch, nil
}

// Reap removes rooms whose last update is older than idle and returns
// their codes.
func (s *Memory) Reap(idle time.Duration) []string {
	cutoff := s.now().Add(-idle)

	s.mu.Lock()
	defer s.mu.Unlock()

	var reaped []string
	for code, e := range s.rooms {
		e.mu.Lock()
		if e.room.UpdatedAt.Before(cutoff) {
			e.removed = true
			for ch := range e.subs {
				delete(e.subs, ch)
				close(ch)
			}
			delete(s.rooms, code)
			reaped = append(reaped, code)
		}
		e.mu.Unlock()
	}

	return reaped
}

// ReapLoop calls Reap every idle/2 until ctx ends.
func (s *Memory) ReapLoop(ctx context.Context, idle time.Duration, onReap func(code string)) {
	if idle <= 0 {
		return
	}

	ticker := time.NewTicker(idle / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, code := range s.Reap(idle) {
				if onReap != nil {
					onReap(code)
				}
			}
		}
	}
}

func (s *Memory) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.rooms)
}
