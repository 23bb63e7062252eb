/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Seednode/cineguess/internal/catalog"
	"github.com/Seednode/cineguess/internal/movie"
	"github.com/Seednode/cineguess/internal/selector"
	"github.com/Seednode/cineguess/internal/solo"
)

func TestPlaySolo(t *testing.T) {
	g := solo.New(selector.New(catalog.NewStatic(inception), zerolog.Nop()), movie.Filter{})

	in := strings.NewReader("inceptoin\nmemento\n/hint\ninception\n/skip\n/quit\n")
	var out bytes.Buffer

	require.NoError(t, playSolo(context.Background(), g, in, &out))

	text := out.String()
	assert.Contains(t, text, "A [REDACTED] plants an [REDACTED]")
	assert.Contains(t, text, solo.MsgClose)
	assert.Contains(t, text, solo.MsgWrong)
	assert.Contains(t, text, `It was "Inception". Streak: 1`)
	assert.Contains(t, text, `The movie was "Inception".`)
	assert.Contains(t, text, "Final streak: 0")
}

func TestPlaySolo_StopsAtEndOfInput(t *testing.T) {
	g := solo.New(selector.New(catalog.NewStatic(inception), zerolog.Nop()), movie.Filter{})

	var out bytes.Buffer
	require.NoError(t, playSolo(context.Background(), g, strings.NewReader(""), &out))
	assert.Contains(t, out.String(), soloHelp)
}

func TestPlayConfig_Validate(t *testing.T) {
	assert.NoError(t, (&PlayConfig{solo: true}).validate())
	assert.Error(t, (&PlayConfig{server: "http://localhost:8080"}).validate())
	assert.Error(t, (&PlayConfig{name: "Alice"}).validate())
	assert.NoError(t, (&PlayConfig{name: "Alice", server: "http://localhost:8080"}).validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"defaults", Config{port: 8080, sessionTimeout: 0}, true},
		{"bad port", Config{port: 0}, false},
		{"cert without key", Config{port: 8080, tlsCert: "cert.pem"}, false},
		{"negative timeout", Config{port: 8080, sessionTimeout: -1}, false},
		{"import without catalog", Config{port: 8080, importFile: "movies.csv"}, false},
		{"import with catalog", Config{port: 8080, importFile: "movies.csv", catalog: "movies.db"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestNewCmd_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("CINEGUESS_PORT", "9191")
	t.Setenv("CINEGUESS_SESSION_TIMEOUT", "5m")

	cfg := &Config{}
	cmd := newCmd(cfg)
	require.NoError(t, cmd.ParseFlags(nil))

	assert.Equal(t, 9191, cfg.port)
	assert.Equal(t, "5m0s", cfg.sessionTimeout.String())
}
