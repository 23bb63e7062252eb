/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Seednode/cineguess/internal/domain"
	"github.com/Seednode/cineguess/internal/session"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemote_CallsAndErrors(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /cineguess/api/createRoom", func(w http.ResponseWriter, r *http.Request) {
		var req session.CreateRoomRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Alice", req.Username)
		_ = json.NewEncoder(w).Encode(session.CreateResult{RoomCode: "ABCD", PlayerID: "p1"})
	})
	mux.HandleFunc("POST /cineguess/api/joinRoom", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(session.ErrorResponse{Code: session.KindNotFound, Message: "room not found"})
	})
	mux.HandleFunc("POST /cineguess/api/startGame", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	r := NewRemote(srv.URL+"/cineguess/", nil)
	ctx := context.Background()

	res, err := r.CreateRoom(ctx, "Alice", nil)
	require.NoError(t, err)
	assert.Equal(t, session.CreateResult{RoomCode: "ABCD", PlayerID: "p1"}, res)

	_, err = r.JoinRoom(ctx, "Bob", "ZZZZ")
	assert.ErrorIs(t, err, session.ErrNotFound)
	assert.Equal(t, "room not found", errorMessage(err))

	err = r.StartGame(ctx, "ABCD", "p1")
	require.Error(t, err)
	assert.Equal(t, session.KindInternal, session.KindOf(err))
}

func TestRemote_Subscribe(t *testing.T) {
	upgrader := websocket.Upgrader{}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /cineguess/rooms/{code}/ws", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ABCD", r.PathValue("code"))
		assert.Equal(t, "p1", r.URL.Query().Get("player"))

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		_ = conn.WriteJSON(domain.Snapshot{Code: "ABCD", Status: domain.StatusWaiting})
		_ = conn.WriteJSON(domain.Snapshot{Code: "ABCD", Status: domain.StatusPlaying})
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := NewRemote(srv.URL+"/cineguess", nil).Subscribe(ctx, "ABCD", "p1")
	require.NoError(t, err)

	var last domain.Snapshot
	timeout := time.After(2 * time.Second)
	for done := false; !done; {
		select {
		case s, ok := <-ch:
			if !ok {
				done = true
				break
			}
			last = s
		case <-timeout:
			t.Fatal("subscription did not close")
		}
	}

	assert.Equal(t, domain.StatusPlaying, last.Status)
}

func TestRemote_SocketURL(t *testing.T) {
	u, err := NewRemote("https://example.com/cineguess", nil).socketURL("AB CD", "p 1")
	require.NoError(t, err)
	assert.Equal(t, "wss://example.com/cineguess/rooms/AB%20CD/ws?player=p+1", u)
}
