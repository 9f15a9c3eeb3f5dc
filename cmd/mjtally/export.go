package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/mjtally/internal/model"
	"github.com/verte-zerg/mjtally/internal/scoring"
	"github.com/verte-zerg/mjtally/internal/session"
	"github.com/verte-zerg/mjtally/internal/stats"
)

type exportDoc struct {
	Players      []string      `json:"players" yaml:"players"`
	Seating      []exportSeat  `json:"seating" yaml:"seating"`
	CurrentRound int           `json:"currentRound" yaml:"current_round"`
	Rounds       []exportRound `json:"rounds" yaml:"rounds"`
	Totals       []exportSeat  `json:"totals" yaml:"totals"`
	History      []exportEntry `json:"history" yaml:"history"`
}

// exportSeat keeps seats in E, S, W, N order, which maps would lose.
type exportSeat struct {
	Seat   model.Seat `json:"seat" yaml:"seat"`
	Player string     `json:"player,omitempty" yaml:"player,omitempty"`
	Score  *int       `json:"score,omitempty" yaml:"score,omitempty"`
	Stats  *statsView `json:"stats,omitempty" yaml:"stats,omitempty"`
}

type statsView struct {
	Wins          int `json:"wins" yaml:"wins"`
	SelfDraws     int `json:"selfDraws" yaml:"self_draws"`
	DiscardLosses int `json:"discardLosses" yaml:"discard_losses"`
}

type exportRound struct {
	Round  int    `json:"round" yaml:"round"`
	Label  string `json:"label" yaml:"label"`
	Fan    int    `json:"fan" yaml:"fan"`
	Result string `json:"result,omitempty" yaml:"result,omitempty"`
	Deltas []int  `json:"deltas,omitempty" yaml:"deltas,omitempty,flow"`
}

type exportEntry struct {
	ID     string       `json:"id,omitempty" yaml:"id,omitempty"`
	Time   string       `json:"time,omitempty" yaml:"time,omitempty"`
	Totals []exportSeat `json:"totals" yaml:"totals"`
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Dump the scoresheet, roster and history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, false, func(_ context.Context, sess *session.Session, _ zerolog.Logger) error {
				return writeExport(cmd.OutOrStdout(), buildExport(sess), exportFormat)
			})
		},
	}
	cmd.Flags().StringVar(&exportFormat, "format", "yaml", "output format (json or yaml)")
	return cmd
}

func buildExport(sess *session.Session) exportDoc {
	seating := sess.Seating()
	tally := sess.Tally()
	doc := exportDoc{
		Players:      sess.Players(),
		CurrentRound: sess.CurrentRound() + 1,
	}
	if doc.Players == nil {
		doc.Players = []string{}
	}
	for _, seat := range model.Seats {
		doc.Seating = append(doc.Seating, exportSeat{Seat: seat, Player: seating.Name(seat)})
		total := tally.Totals.Of(seat)
		s := tally.Stats.Of(seat)
		doc.Totals = append(doc.Totals, exportSeat{
			Seat:   seat,
			Player: seating.Name(seat),
			Score:  &total,
			Stats:  &statsView{Wins: s.Wins, SelfDraws: s.SelfDraws, DiscardLosses: s.DiscardLosses},
		})
	}
	outcomes := sess.Outcomes()
	for i, slot := range scoring.GenerateSchedule() {
		r := exportRound{
			Round:  i + 1,
			Label:  stats.RoundLabel(slot, seating),
			Fan:    outcomes[i].Fan,
			Result: stats.DescribeOutcome(outcomes[i]),
		}
		if outcomes[i].IsWin() {
			r.Deltas = append([]int(nil), tally.Rounds[i][:]...)
		}
		doc.Rounds = append(doc.Rounds, r)
	}
	for _, e := range sess.History() {
		entry := exportEntry{ID: e.ID}
		if !e.Time.IsZero() {
			entry.Time = e.Time.Format(time.RFC3339)
		}
		for _, seat := range model.Seats {
			score := e.Totals.Of(seat)
			entry.Totals = append(entry.Totals, exportSeat{Seat: seat, Player: e.Seating.Name(seat), Score: &score})
		}
		doc.History = append(doc.History, entry)
	}
	if doc.History == nil {
		doc.History = []exportEntry{}
	}
	return doc
}

func writeExport(w io.Writer, doc exportDoc, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown export format %q (use json or yaml)", format)
}
