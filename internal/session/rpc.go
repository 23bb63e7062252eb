/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package session

import "github.com/Seednode/cineguess/internal/domain"

// Request and response bodies of the RPC surface. Transport code decodes
// into these and rejects unknown fields.

type CreateRoomRequest struct {
	Username string         `json:"username"`
	Config   *domain.Config `json:"config,omitempty"`
}

type JoinRoomRequest struct {
	Username string `json:"username"`
	RoomCode string `json:"roomCode"`
}

type JoinRoomResponse struct {
	Success  bool   `json:"success"`
	PlayerID string `json:"playerId"`
}

// PlayerRequest is the body of startGame and nextRound.
type PlayerRequest struct {
	RoomCode string `json:"roomCode"`
	PlayerID string `json:"playerId"`
}

type GuessRequest struct {
	RoomCode string `json:"roomCode"`
	PlayerID string `json:"playerId"`
	Guess    string `json:"guess"`
}

type Ack struct {
	Success bool `json:"success"`
}

type ErrorResponse struct {
	Code    Kind   `json:"code"`
	Message string `json:"message"`
}

// Validate reports the first missing required field.
func (r PlayerRequest) Validate() error {
	if r.RoomCode == "" || r.PlayerID == "" {
		return newError(KindInvalidArgument, "roomCode and playerId are required")
	}
	return nil
}

func (r GuessRequest) Validate() error {
	if r.RoomCode == "" || r.PlayerID == "" {
		return newError(KindInvalidArgument, "roomCode and playerId are required")
	}
	return nil
}
