/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Seednode/cineguess/internal/domain"
	"github.com/Seednode/cineguess/internal/session"
	"github.com/gorilla/websocket"
)

// Remote talks to a cineguess server over its JSON RPC endpoints and
// room websocket. Base is the server URL including the prefix, e.g.
// http://localhost:8080/cineguess.
type Remote struct {
	base   string
	http   *http.Client
	dialer *websocket.Dialer
}

func NewRemote(base string, hc *http.Client) *Remote {
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Remote{
		base:   strings.TrimSuffix(base, "/"),
		http:   hc,
		dialer: websocket.DefaultDialer,
	}
}

func (r *Remote) call(ctx context.Context, op string, body, out any) error {
	buf, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.base+"/api/"+op, bytes.NewReader(buf))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var e session.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&e); err != nil || e.Code == "" {
			return fmt.Errorf("%s: unexpected status %s", op, resp.Status)
		}
		return &session.Error{Kind: e.Code, Message: e.Message}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (r *Remote) CreateRoom(ctx context.Context, username string, cfg *domain.Config) (session.CreateResult, error) {
	var res session.CreateResult
	err := r.call(ctx, "createRoom", session.CreateRoomRequest{Username: username, Config: cfg}, &res)
	return res, err
}

func (r *Remote) JoinRoom(ctx context.Context, username, code string) (string, error) {
	var res session.JoinRoomResponse
	if err := r.call(ctx, "joinRoom", session.JoinRoomRequest{Username: username, RoomCode: code}, &res); err != nil {
		return "", err
	}
	return res.PlayerID, nil
}

func (r *Remote) StartGame(ctx context.Context, code, playerID string) error {
	return r.call(ctx, "startGame", session.PlayerRequest{RoomCode: code, PlayerID: playerID}, nil)
}

func (r *Remote) SubmitGuess(ctx context.Context, code, playerID, guess string) (session.GuessResult, error) {
	var res session.GuessResult
	err := r.call(ctx, "submitGuess", session.GuessRequest{RoomCode: code, PlayerID: playerID, Guess: guess}, &res)
	return res, err
}

func (r *Remote) NextRound(ctx context.Context, code, playerID string) (session.RoundResult, error) {
	var res session.RoundResult
	err := r.call(ctx, "nextRound", session.PlayerRequest{RoomCode: code, PlayerID: playerID}, &res)
	return res, err
}

func (r *Remote) socketURL(code, playerID string) (string, error) {
	u, err := url.Parse(r.base)
	if err != nil {
		return "", err
	}

	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path += "/rooms/" + code + "/ws"
	u.RawQuery = url.Values{"player": {playerID}}.Encode()

	return u.String(), nil
}

// Subscribe streams room snapshots until ctx ends or the connection
// drops. Only the latest undelivered snapshot is kept.
func (r *Remote) Subscribe(ctx context.Context, code, playerID string) (<-chan domain.Snapshot, error) {
	addr, err := r.socketURL(code, playerID)
	if err != nil {
		return nil, err
	}

	conn, resp, err := r.dialer.DialContext(ctx, addr, nil)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, &session.Error{Kind: session.KindNotFound, Message: "room not found"}
		}
		return nil, err
	}

	out := make(chan domain.Snapshot, 1)

	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	go func() {
		defer close(out)
		defer conn.Close()

		for {
			var s domain.Snapshot
			if err := conn.ReadJSON(&s); err != nil {
				return
			}

			select {
			case <-out:
			default:
			}
			out <- s
		}
	}()

	return out, nil
}
