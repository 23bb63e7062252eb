/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// CineGuess multiplayer transport
//
// Rooms are created and played through JSON RPC endpoints under
// $prefix/cineguess/api/. Every client subscribes to its room over a
// websocket and receives the public room snapshot after each change.
//
// Routes:
//   - POST /api/createRoom, /api/joinRoom, /api/startGame,
//     /api/submitGuess, /api/nextRound
//   - GET  /rooms/:code/ws?player=  room snapshot stream
//   - GET  /rooms/:code/qr          PNG QR code of the join command

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
	"golang.org/x/time/rate"

	"github.com/Seednode/cineguess/internal/domain"
	"github.com/Seednode/cineguess/internal/session"
	"github.com/Seednode/cineguess/internal/store"
)

const (
	maxBodySize = 4 << 10

	guessRate  = rate.Limit(2)
	guessBurst = 5

	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// subscriber is the part of the room store the websocket handler needs.
type subscriber interface {
	Subscribe(ctx context.Context, code string) (<-chan *domain.Room, error)
	Len() int
}

type game struct {
	cfg     *Config
	rooms   subscriber
	manager *session.Manager

	limiter  *guessLimiter
	presence *presence
}

func newGame(cfg *Config, rooms *store.Memory, manager *session.Manager) *game {
	return &game{
		cfg:      cfg,
		rooms:    rooms,
		manager:  manager,
		limiter:  newGuessLimiter(guessRate, guessBurst),
		presence: newPresence(manager),
	}
}

// guessLimiter keeps one token bucket per room and player.
type guessLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	limiters map[string]map[string]*rate.Limiter
}

func newGuessLimiter(limit rate.Limit, burst int) *guessLimiter {
	return &guessLimiter{
		limit:    limit,
		burst:    burst,
		limiters: make(map[string]map[string]*rate.Limiter),
	}
}

func (l *guessLimiter) allow(code, playerID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	room, ok := l.limiters[code]
	if !ok {
		room = make(map[string]*rate.Limiter)
		l.limiters[code] = room
	}

	lim, ok := room[playerID]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		room[playerID] = lim
	}

	return lim.Allow()
}

func (l *guessLimiter) forget(code string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.limiters, code)
}

// presence counts live subscriptions per player. A player is online while
// at least one is open.
type presence struct {
	mu      sync.Mutex
	manager *session.Manager
	counts  map[string]int
}

func newPresence(manager *session.Manager) *presence {
	return &presence{
		manager: manager,
		counts:  make(map[string]int),
	}
}

func (p *presence) add(ctx context.Context, code, playerID string, delta int) error {
	key := code + "/" + playerID

	p.mu.Lock()
	defer p.mu.Unlock()

	before := p.counts[key]
	after := before + delta
	if after <= 0 {
		delete(p.counts, key)
	} else {
		p.counts[key] = after
	}

	switch {
	case before == 0 && after > 0:
		return p.manager.SetOnline(ctx, code, playerID, true)
	case before > 0 && after <= 0:
		return p.manager.SetOnline(ctx, code, playerID, false)
	}
	return nil
}

// decode reads a JSON body into dst, rejecting unknown fields.
func decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errBadBody, err)
	}
	return nil
}

func writeJSON(cfg *Config, w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	securityHeaders(cfg, w)

	_ = json.NewEncoder(w).Encode(v)
}

// rpc adapts a typed operation to an httprouter.Handle.
func rpc[Req, Resp any](g *game, name string, op func(context.Context, Req) (Resp, error)) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		var req Req
		if err := decode(r, &req); err != nil {
			writeError(g.cfg, w, r, err)
			return
		}

		resp, err := op(r.Context(), req)
		if err != nil {
			logf(g.cfg, "GAMES: %s from %s failed: %v", name, realIP(r), err)
			writeError(g.cfg, w, r, err)
			return
		}

		writeJSON(g.cfg, w, resp)

		logf(g.cfg, "SERVE: %s for %s in %s", name, realIP(r), time.Since(startTime).Round(time.Microsecond))
	}
}

func (g *game) createRoom(ctx context.Context, req session.CreateRoomRequest) (session.CreateResult, error) {
	var cfg domain.Config
	if req.Config != nil {
		cfg = *req.Config
	}

	res, err := g.manager.CreateRoom(ctx, req.Username, cfg)
	if err != nil {
		return res, err
	}

	logf(g.cfg, "GAMES: Created room %s", res.RoomCode)

	return res, nil
}

func (g *game) joinRoom(ctx context.Context, req session.JoinRoomRequest) (session.JoinRoomResponse, error) {
	id, err := g.manager.JoinRoom(ctx, req.Username, req.RoomCode)
	if err != nil {
		return session.JoinRoomResponse{}, err
	}

	return session.JoinRoomResponse{Success: true, PlayerID: id}, nil
}

func (g *game) startGame(ctx context.Context, req session.PlayerRequest) (session.Ack, error) {
	if err := req.Validate(); err != nil {
		return session.Ack{}, err
	}
	if err := g.manager.StartGame(ctx, req.RoomCode, req.PlayerID); err != nil {
		return session.Ack{}, err
	}

	return session.Ack{Success: true}, nil
}

func (g *game) submitGuess(ctx context.Context, req session.GuessRequest) (session.GuessResult, error) {
	if err := req.Validate(); err != nil {
		return session.GuessResult{}, err
	}

	code := domain.NormalizeCode(req.RoomCode)
	if !g.limiter.allow(code, req.PlayerID) {
		return session.GuessResult{}, &session.Error{Kind: session.KindResourceExhausted, Message: "too many guesses, slow down"}
	}

	return g.manager.SubmitGuess(ctx, code, req.PlayerID, req.Guess)
}

func (g *game) nextRound(ctx context.Context, req session.PlayerRequest) (session.RoundResult, error) {
	if err := req.Validate(); err != nil {
		return session.RoundResult{}, err
	}

	return g.manager.NextRound(ctx, req.RoomCode, req.PlayerID)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// serveRoomSocket streams public snapshots of one room until either side
// goes away. Clients never send anything meaningful; reads only detect
// disconnects and answer pings.
func (g *game) serveRoomSocket() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		code := domain.NormalizeCode(ps.ByName("code"))
		playerID := r.URL.Query().Get("player")

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		updates, err := g.rooms.Subscribe(ctx, code)
		if err != nil {
			writeError(g.cfg, w, r, &session.Error{Kind: session.KindNotFound, Message: "room not found"})
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logf(g.cfg, "GAMES: Websocket upgrade for %s failed: %v", realIP(r), err)
			return
		}
		defer conn.Close()

		if playerID != "" {
			if err := g.presence.add(ctx, code, playerID, 1); err != nil {
				logf(g.cfg, "GAMES: Marking %s online in %s failed: %v", playerID, code, err)
			}
			defer func() {
				if err := g.presence.add(context.Background(), code, playerID, -1); err != nil {
					logf(g.cfg, "GAMES: Marking %s offline in %s failed: %v", playerID, code, err)
				}
			}()
		}

		logf(g.cfg, "GAMES: %s subscribed to room %s", realIP(r), code)

		go readPump(conn, cancel)
		writePump(ctx, conn, updates)
	}
}

func readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()

	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func writePump(ctx context.Context, conn *websocket.Conn, updates <-chan *domain.Room) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return

		case room, ok := <-updates:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "room closed"),
					time.Now().Add(writeWait))
				return
			}

			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(room.Snapshot()); err != nil {
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// joinCommand is what the QR code encodes: the terminal command that joins
// this room on this server.
func joinCommand(cfg *Config, r *http.Request, code string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	return fmt.Sprintf("cineguess play --server %s://%s%s --room %s", scheme, r.Host, cfg.prefix, code)
}

func (g *game) serveQR() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		startTime := time.Now()

		code := domain.NormalizeCode(ps.ByName("code"))
		if _, err := g.manager.Room(r.Context(), code); err != nil {
			writeError(g.cfg, w, r, err)
			return
		}

		const qrSize = 320
		png, err := qrcode.Encode(joinCommand(g.cfg, r, code), qrcode.Medium, qrSize)
		if err != nil {
			writeError(g.cfg, w, r, err)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		securityHeaders(g.cfg, w)

		written, err := w.Write(png)
		if err != nil {
			return
		}

		logf(g.cfg, "SERVE: QR code for room %s (%s) to %s in %s",
			code,
			humanReadableSize(int64(written)),
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}

func registerCineGuess(cfg *Config, path string, mux *httprouter.Router, g *game) {
	base := cfg.prefix + path

	mux.POST(base+"/api/createRoom", rpc(g, "createRoom", g.createRoom))
	mux.POST(base+"/api/joinRoom", rpc(g, "joinRoom", g.joinRoom))
	mux.POST(base+"/api/startGame", rpc(g, "startGame", g.startGame))
	mux.POST(base+"/api/submitGuess", rpc(g, "submitGuess", g.submitGuess))
	mux.POST(base+"/api/nextRound", rpc(g, "nextRound", g.nextRound))

	mux.GET(base+"/rooms/:code/ws", g.serveRoomSocket())
	mux.GET(base+"/rooms/:code/qr", g.serveQR())
}
