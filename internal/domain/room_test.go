/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRoom() *Room {
	return &Room{
		Code:   "ABCD",
		Status: StatusPlaying,
		Players: map[string]*Player{
			"h": {ID: "h", Username: "host", IsHost: true},
			"p": {ID: "p", Username: "guest"},
		},
		GameState: GameState{
			Round:           1,
			TotalRounds:     5,
			SecretTitle:     "The Matrix",
			CorrectGuessers: []string{"p"},
			MovieData:       MovieData{Description: "a b c", HiddenWordIndices: []int{1}},
		},
	}
}

func TestRoom_Clone(t *testing.T) {
	r := newRoom()
	c := r.Clone()

	c.Players["h"].Score = 500
	c.GameState.CorrectGuessers[0] = "x"
	c.GameState.MovieData.HiddenWordIndices[0] = 9

	assert.Equal(t, 0, r.Players["h"].Score)
	assert.Equal(t, "p", r.GameState.CorrectGuessers[0])
	assert.Equal(t, 1, r.GameState.MovieData.HiddenWordIndices[0])
}

func TestRoom_HostAndGuessed(t *testing.T) {
	r := newRoom()

	require.NotNil(t, r.Host())
	assert.Equal(t, "h", r.Host().ID)
	assert.True(t, r.IsHost("h"))
	assert.False(t, r.IsHost("p"))
	assert.False(t, r.IsHost("nobody"))
	assert.True(t, r.HasGuessed("p"))
	assert.False(t, r.HasGuessed("h"))
}

func TestSnapshot_HidesSecretWhilePlaying(t *testing.T) {
	r := newRoom()

	s := r.Snapshot()
	assert.Empty(t, s.RevealedTitle)
	assert.Empty(t, s.GameState.SecretTitle)

	raw, err := json.Marshal(s)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "Matrix")

	raw, err = json.Marshal(r)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "Matrix")
}

func TestSnapshot_RevealsAfterResolution(t *testing.T) {
	for _, status := range []Status{StatusRoundEnd, StatusGameOver} {
		r := newRoom()
		r.Status = status

		s := r.Snapshot()
		assert.Equal(t, "The Matrix", s.RevealedTitle, status)
		assert.Empty(t, s.GameState.SecretTitle, status)
	}
}

func TestSnapshot_EmptyGuessersIsNotNull(t *testing.T) {
	r := newRoom()
	r.GameState.CorrectGuessers = nil

	raw, err := json.Marshal(r.Snapshot())
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"correctGuessers":[]`)
}

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "AB2C", NormalizeCode("  ab2c "))
}
