package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/mjtally/internal/historyui"
	"github.com/verte-zerg/mjtally/internal/model"
	"github.com/verte-zerg/mjtally/internal/session"
	"github.com/verte-zerg/mjtally/internal/stats"
)

var (
	roundFan   int
	roundWin   string
	roundFrom  string
	roundZimo  bool
	roundDraw  bool
	roundClear bool

	resetYes bool

	historyPlain bool
	historyLast  int

	exportFormat string
)

// roundOptions mirrors the round command flags. fanSet is false when --fan
// was not given, so the round keeps its recorded fan.
type roundOptions struct {
	fan    int
	fanSet bool
	win    string
	from   string
	zimo   bool
	draw   bool
	clear  bool
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the current scoresheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, false, func(_ context.Context, sess *session.Session, _ zerolog.Logger) error {
				return printSheet(cmd, sess)
			})
		},
	}
}

func newRoundCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "round <1-16>",
		Short: "Record the result of a round",
		Example: `  mjtally round 3 --win S --zimo --fan 2
  mjtally round 4 --win N --from E --fan 5
  mjtally round 5 --draw
  mjtally round 5 --clear`,
		Args: cobra.ExactArgs(1),
		RunE: runRoundCmd,
	}
	cmd.Flags().IntVar(&roundFan, "fan", 0, "fan count (negative values count as 0)")
	cmd.Flags().StringVar(&roundWin, "win", "", "winning seat (E, S, W or N)")
	cmd.Flags().StringVar(&roundFrom, "from", "", "seat that discarded the winning tile")
	cmd.Flags().BoolVar(&roundZimo, "zimo", false, "winner drew the tile themselves")
	cmd.Flags().BoolVar(&roundDraw, "draw", false, "round ended in an exhaustive draw")
	cmd.Flags().BoolVar(&roundClear, "clear", false, "erase the round")
	cmd.MarkFlagsMutuallyExclusive("from", "zimo", "draw", "clear")
	return cmd
}

func runRoundCmd(cmd *cobra.Command, args []string) error {
	idx, err := parseRoundNumber(args[0])
	if err != nil {
		return err
	}
	opts := roundOptions{
		fan:    roundFan,
		fanSet: cmd.Flags().Changed("fan"),
		win:    roundWin,
		from:   roundFrom,
		zimo:   roundZimo,
		draw:   roundDraw,
		clear:  roundClear,
	}
	return withSession(cmd, false, func(ctx context.Context, sess *session.Session, log zerolog.Logger) error {
		current, err := sess.Outcome(idx)
		if err != nil {
			return err
		}
		outcome, err := buildOutcome(current, opts)
		if err != nil {
			return err
		}
		if err := sess.SetOutcome(ctx, idx, outcome); err != nil {
			return err
		}
		if err := sess.SetCurrentRound(ctx, idx); err != nil {
			return err
		}
		log.Debug().Int("round", idx+1).Str("result", stats.DescribeOutcome(outcome)).Msg("round-recorded")
		return printSheet(cmd, sess)
	})
}

// parseRoundNumber maps the 1-based CLI round to a 0-based index.
func parseRoundNumber(value string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n < 1 || n > model.RoundCount {
		return 0, fmt.Errorf("%w: round must be 1-%d, got %q", session.ErrInvalidIndex, model.RoundCount, value)
	}
	return n - 1, nil
}

func buildOutcome(current model.RoundOutcome, opts roundOptions) (model.RoundOutcome, error) {
	fan := current.Fan
	if opts.fanSet {
		fan = opts.fan
	}
	if opts.win != "" && (opts.draw || opts.clear) {
		return model.RoundOutcome{}, errors.New("--win cannot be combined with --draw or --clear")
	}
	switch {
	case opts.clear:
		return model.RoundOutcome{}, nil
	case opts.draw:
		return model.Draw(fan), nil
	case opts.win != "":
		winner, err := model.ParseSeat(opts.win)
		if err != nil {
			return model.RoundOutcome{}, err
		}
		if opts.zimo {
			return model.SelfDraw(winner, fan), nil
		}
		if opts.from == "" {
			return model.RoundOutcome{}, errors.New("--win needs --from <seat> or --zimo")
		}
		loser, err := model.ParseSeat(opts.from)
		if err != nil {
			return model.RoundOutcome{}, err
		}
		return model.Discard(winner, loser, fan), nil
	case opts.from != "" || opts.zimo:
		return model.RoundOutcome{}, errors.New("--from and --zimo need --win <seat>")
	case opts.fanSet:
		current.Fan = fan
		return current, nil
	}
	return model.RoundOutcome{}, errors.New("nothing to record: use --win, --draw, --clear or --fan")
}

func newSeatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seat <E|S|W|N> [name]",
		Short: "Seat a player, or free the seat when no name is given",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			seat, err := model.ParseSeat(args[0])
			if err != nil {
				return err
			}
			name := ""
			if len(args) == 2 {
				name = args[1]
			}
			return withSession(cmd, false, func(ctx context.Context, sess *session.Session, _ zerolog.Logger) error {
				if err := sess.AssignSeat(ctx, seat, name); err != nil {
					return err
				}
				return printSeating(cmd, sess.Seating())
			})
		},
	}
}

func newPlayersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "players",
		Short: "List the player roster",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, false, func(_ context.Context, sess *session.Session, _ zerolog.Logger) error {
				return printPlayers(cmd, sess.Players())
			})
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "add <name>",
		Short: "Add a player to the roster",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, false, func(ctx context.Context, sess *session.Session, _ zerolog.Logger) error {
				if err := sess.AddPlayer(ctx, args[0]); err != nil {
					return err
				}
				return printPlayers(cmd, sess.Players())
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:     "rm <name>",
		Aliases: []string{"remove"},
		Short:   "Remove a player and free their seat",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, false, func(ctx context.Context, sess *session.Session, _ zerolog.Logger) error {
				if err := sess.RemovePlayer(ctx, args[0]); err != nil {
					return err
				}
				return printPlayers(cmd, sess.Players())
			})
		},
	})
	return cmd
}

func newCloseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "close",
		Short: "Record the session in history and start a fresh scoresheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, false, func(ctx context.Context, sess *session.Session, _ zerolog.Logger) error {
				entry, err := sess.CloseSession(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if _, err := fmt.Fprintf(out, "Session closed (%d in history).\n", len(sess.History())); err != nil {
					return err
				}
				for _, seat := range model.Seats {
					label := stats.SeatLabel(entry.Seating, seat)
					if _, err := fmt.Fprintf(out, "  %s %s %s\n", seat, label, stats.FormatSigned(entry.Totals.Of(seat))); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func newResetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Erase the scoresheet, seating, roster and history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !resetYes {
				return errors.New("refusing to erase everything without --yes")
			}
			return withSession(cmd, false, func(ctx context.Context, sess *session.Session, _ zerolog.Logger) error {
				if err := sess.ResetAll(ctx); err != nil {
					return err
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "All data erased.")
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&resetYes, "yes", false, "confirm the reset")
	return cmd
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse closed sessions and the leaderboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if historyLast < 0 {
				return errors.New("--last must be >= 0")
			}
			return withSession(cmd, !historyPlain, func(_ context.Context, sess *session.Session, _ zerolog.Logger) error {
				entries := sess.History()
				if historyPlain {
					useColor := stats.ShouldUseColor(cmd.OutOrStdout(), color)
					out := cmd.OutOrStdout()
					if err := stats.RenderHistory(out, stats.LastN(entries, historyLast), useColor); err != nil {
						return err
					}
					if len(entries) == 0 {
						return nil
					}
					if _, err := fmt.Fprintln(out); err != nil {
						return err
					}
					rows := stats.BuildLeaderboard(entries, historyLast)
					return stats.RenderLeaderboard(out, rows, stats.LastN(entries, historyLast), useColor)
				}
				program := tea.NewProgram(historyui.NewModel(entries, historyLast), tea.WithAltScreen())
				if _, err := program.Run(); err != nil {
					return fmt.Errorf("failed to run history TUI: %w", err)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&historyPlain, "plain", false, "print instead of opening the browser")
	cmd.Flags().IntVar(&historyLast, "last", 0, "limit to the last N games")
	return cmd
}

func printSheet(cmd *cobra.Command, sess *session.Session) error {
	sheet := stats.Sheet{
		Outcomes: sess.Outcomes(),
		Tally:    sess.Tally(),
		Seating:  sess.Seating(),
		Current:  sess.CurrentRound(),
	}
	return stats.RenderScoresheet(cmd.OutOrStdout(), sheet, stats.ShouldUseColor(cmd.OutOrStdout(), color))
}

func printSeating(cmd *cobra.Command, seating model.Seating) error {
	for _, seat := range model.Seats {
		name := seating.Name(seat)
		if name == "" {
			name = "-"
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", seat, name); err != nil {
			return err
		}
	}
	return nil
}

func printPlayers(cmd *cobra.Command, players []string) error {
	if len(players) == 0 {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "No players yet.")
		return err
	}
	for _, name := range players {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), name); err != nil {
			return err
		}
	}
	return nil
}
