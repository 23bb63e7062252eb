/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Seednode/cineguess/internal/catalog"
	"github.com/Seednode/cineguess/internal/client"
	"github.com/Seednode/cineguess/internal/domain"
	"github.com/Seednode/cineguess/internal/movie"
	"github.com/Seednode/cineguess/internal/selector"
	"github.com/Seednode/cineguess/internal/session"
	"github.com/Seednode/cineguess/internal/solo"
)

type PlayConfig struct {
	catalog   string
	genre     string
	maxYear   int
	minRating float64
	minYear   int
	name      string
	room      string
	rounds    int
	server    string
	solo      bool
}

func (c *PlayConfig) validate() error {
	if c.solo {
		return nil
	}
	if strings.TrimSpace(c.name) == "" {
		return errors.New("--name is required for multiplayer games")
	}
	if c.server == "" {
		return errors.New("--server must not be empty")
	}
	return nil
}

func (c *PlayConfig) roomConfig() *domain.Config {
	return &domain.Config{
		Genre:       c.genre,
		MinYear:     c.minYear,
		MaxYear:     c.maxYear,
		MinRating:   c.minRating,
		TotalRounds: c.rounds,
	}
}

func newPlayCmd(cfg *Config, v *viper.Viper) *cobra.Command {
	pc := &PlayConfig{}

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play in the terminal, against a server or on your own.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pc.validate(); err != nil {
				return err
			}

			err := runPlay(cmd.Context(), cfg, pc, os.Stdin, cmd.OutOrStdout())
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	fs := cmd.Flags()
	normalizeFlags(fs)

	fs.StringVar(&pc.catalog, "catalog", "", "sqlite movie catalog for solo games (env: CINEGUESS_CATALOG)")
	fs.StringVar(&pc.genre, "genre", "", "only pick movies of this genre (env: CINEGUESS_GENRE)")
	fs.IntVar(&pc.maxYear, "max-year", 0, "latest release year (env: CINEGUESS_MAX_YEAR)")
	fs.Float64Var(&pc.minRating, "min-rating", 0, "lowest rating, 0-10 (env: CINEGUESS_MIN_RATING)")
	fs.IntVar(&pc.minYear, "min-year", 0, "earliest release year (env: CINEGUESS_MIN_YEAR)")
	fs.StringVarP(&pc.name, "name", "n", "", "username shown to other players (env: CINEGUESS_NAME)")
	fs.StringVarP(&pc.room, "room", "r", "", "room code to join; a new room is created if unset (env: CINEGUESS_ROOM)")
	fs.IntVar(&pc.rounds, "rounds", domain.DefaultTotalRounds, "rounds per game when creating a room (env: CINEGUESS_ROUNDS)")
	fs.StringVarP(&pc.server, "server", "s", "http://localhost:8080", "server base URL including any prefix (env: CINEGUESS_SERVER)")
	fs.BoolVar(&pc.solo, "solo", false, "play single-player without a server (env: CINEGUESS_SOLO)")

	bindEnv(v, fs)

	return cmd
}

func runPlay(ctx context.Context, cfg *Config, pc *PlayConfig, in io.Reader, out io.Writer) error {
	if pc.solo {
		src, closeSource, err := openSoloCatalog(pc.catalog)
		if err != nil {
			return err
		}
		defer closeSource()

		g := solo.New(selector.New(src, cfg.log), movie.Filter{
			Genre:     pc.genre,
			MinYear:   pc.minYear,
			MaxYear:   pc.maxYear,
			MinRating: pc.minRating,
		})

		return playSolo(ctx, g, in, out)
	}

	remote := client.NewRemote(strings.TrimSuffix(pc.server, "/")+"/cineguess", nil)

	code := domain.NormalizeCode(pc.room)
	var playerID string

	if code == "" {
		res, err := remote.CreateRoom(ctx, pc.name, pc.roomConfig())
		if err != nil {
			return fmt.Errorf("create room: %w", err)
		}
		code, playerID = res.RoomCode, res.PlayerID

		fmt.Fprintf(out, "Created room %s. Others can join with --room %s\n", code, code)
	} else {
		id, err := remote.JoinRoom(ctx, pc.name, code)
		if err != nil {
			return fmt.Errorf("join room %s: %w", code, err)
		}
		playerID = id

		fmt.Fprintf(out, "Joined room %s as %s\n", code, pc.name)
	}

	snapshots, err := remote.Subscribe(ctx, code, playerID)
	if err != nil {
		return fmt.Errorf("subscribe to room %s: %w", code, err)
	}

	view := client.NewView(code, playerID, client.NewTerminal(out), remote, nil)

	return view.Run(ctx, snapshots, readLines(ctx, in))
}

func openSoloCatalog(path string) (movie.Source, func() error, error) {
	if path == "" {
		src, err := catalog.Builtin()
		if err != nil {
			return nil, nil, err
		}
		return src, func() error { return nil }, nil
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, nil, err
	}

	src := catalog.New(db)
	if err := src.InitSchema(); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	return src, db.Close, nil
}

// readLines feeds input lines to the view loop until in is exhausted.
func readLines(ctx context.Context, in io.Reader) <-chan string {
	lines := make(chan string)

	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	return lines
}

const soloHelp = "Commands: /hint reveals a word (resets your streak), /skip gives up, /quit exits."

func playSolo(ctx context.Context, g *solo.Game, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, soloHelp)
	fmt.Fprintf(out, "\n%s\n", g.Next(ctx))

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		switch line := strings.TrimSpace(scanner.Text()); line {
		case "/quit":
			fmt.Fprintf(out, "Final streak: %d\n", g.Streak())
			return nil

		case "/hint":
			puzzle, ok := g.Hint()
			if !ok {
				fmt.Fprintln(out, puzzle)
				continue
			}
			fmt.Fprintf(out, "%s\nStreak: %d\n", puzzle, g.Streak())

		case "/skip":
			fmt.Fprintf(out, "The movie was %q.\n", g.Skip())
			fmt.Fprintf(out, "\n%s\n", g.Next(ctx))

		default:
			res := g.Guess(line)
			switch res.Verdict {
			case session.Correct:
				fmt.Fprintf(out, "%s It was %q. Streak: %d\n", res.Message, res.Title, res.Streak)
				fmt.Fprintf(out, "\n%s\n", g.Next(ctx))
			default:
				fmt.Fprintf(out, "%s Streak: %d\n", res.Message, res.Streak)
			}
		}
	}

	return scanner.Err()
}
