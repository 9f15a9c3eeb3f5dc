package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/mjtally/internal/model"
)

func TestBuildOutcome(t *testing.T) {
	current := model.Discard(model.SeatNorth, model.SeatEast, 5)
	tests := []struct {
		name string
		opts roundOptions
		want model.RoundOutcome
		err  bool
	}{
		{name: "self draw", opts: roundOptions{win: "s", zimo: true, fan: 2, fanSet: true}, want: model.SelfDraw(model.SeatSouth, 2)},
		{name: "discard keeps fan", opts: roundOptions{win: "W", from: "E"}, want: model.Discard(model.SeatWest, model.SeatEast, 5)},
		{name: "draw", opts: roundOptions{draw: true}, want: model.Draw(5)},
		{name: "clear", opts: roundOptions{clear: true}, want: model.RoundOutcome{}},
		{name: "fan only", opts: roundOptions{fan: 8, fanSet: true}, want: model.Discard(model.SeatNorth, model.SeatEast, 8)},
		{name: "win without method", opts: roundOptions{win: "E"}, err: true},
		{name: "from without win", opts: roundOptions{from: "E"}, err: true},
		{name: "bad seat", opts: roundOptions{win: "X", zimo: true}, err: true},
		{name: "win and draw", opts: roundOptions{win: "E", draw: true}, err: true},
		{name: "nothing", opts: roundOptions{}, err: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := buildOutcome(current, tt.opts)
			if tt.err {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRoundNumber(t *testing.T) {
	idx, err := parseRoundNumber("16")
	require.NoError(t, err)
	assert.Equal(t, 15, idx)

	for _, bad := range []string{"0", "17", "x"} {
		_, err := parseRoundNumber(bad)
		assert.Error(t, err, bad)
	}
}

func TestValidateConfig(t *testing.T) {
	ok := model.Config{DBPath: "a.db", Retries: 1, LogLevel: "debug"}
	require.NoError(t, validateConfig(ok))

	noDB := ok
	noDB.DBPath = " "
	assert.Error(t, validateConfig(noDB))

	noRetries := ok
	noRetries.Retries = 0
	assert.Error(t, validateConfig(noRetries))

	badLevel := ok
	badLevel.LogLevel = "loud"
	assert.Error(t, validateConfig(badLevel))
}

type cliEnv struct {
	t  *testing.T
	db string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))
	t.Setenv("NO_COLOR", "1")
	return &cliEnv{t: t, db: filepath.Join(dir, "data", "mjtally.db")}
}

func (e *cliEnv) run(args ...string) (string, error) {
	e.t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--db", e.db}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (e *cliEnv) mustRun(args ...string) string {
	e.t.Helper()
	out, err := e.run(args...)
	require.NoError(e.t, err, "mjtally %s", strings.Join(args, " "))
	return out
}

func TestCLIRecordAndClose(t *testing.T) {
	env := newCLIEnv(t)

	assert.Contains(t, env.mustRun("players"), "No players yet.")
	env.mustRun("players", "add", "Ann")
	env.mustRun("players", "add", "Bo")
	seating := env.mustRun("seat", "E", "Ann")
	assert.Contains(t, seating, "E Ann")
	assert.Contains(t, seating, "S -")

	sheet := env.mustRun("round", "4", "--win", "N", "--from", "E", "--fan", "5")
	assert.Contains(t, sheet, "N off E")

	out := env.mustRun("close")
	assert.Contains(t, out, "Session closed (1 in history).")
	assert.Contains(t, out, "E Ann -13")
	assert.Contains(t, out, "N (N) +29")

	history := env.mustRun("history", "--plain")
	assert.Contains(t, history, "Ann -13")
	assert.Contains(t, history, "Player")

	sheet = env.mustRun("show")
	assert.NotContains(t, sheet, "N off E")
}

func TestCLIRejectsBadInput(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run("round", "17", "--draw")
	assert.Error(t, err)
	_, err = env.run("round", "1", "--win", "E")
	assert.Error(t, err)
	_, err = env.run("seat", "E", "Ghost")
	assert.Error(t, err)
	_, err = env.run("reset")
	assert.Error(t, err)
	_, err = env.run("--retries", "0", "show")
	assert.Error(t, err)
}

func TestCLIConfigFile(t *testing.T) {
	env := newCLIEnv(t)
	cfgDir := filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "mjtally")
	require.NoError(t, os.MkdirAll(cfgDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfgDir, "config.toml"), []byte("[store]\nretries = 0\n"), 0o644))

	_, err := env.run("show")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--retries")

	// Flags win over the file.
	_, err = env.run("--retries", "2", "show")
	assert.NoError(t, err)
}

func TestCLIExport(t *testing.T) {
	env := newCLIEnv(t)
	env.mustRun("players", "add", "Ann")
	env.mustRun("seat", "N", "Ann")
	env.mustRun("round", "1", "--win", "S", "--zimo", "--fan", "3")

	var doc exportDoc
	require.NoError(t, json.Unmarshal([]byte(env.mustRun("export", "--format", "json")), &doc))
	assert.Equal(t, []string{"Ann"}, doc.Players)
	require.Len(t, doc.Rounds, model.RoundCount)
	assert.Equal(t, "S zimo", doc.Rounds[0].Result)
	assert.Equal(t, []int{-11, 33, -11, -11}, doc.Rounds[0].Deltas)
	require.Len(t, doc.Totals, model.SeatCount)
	require.NotNil(t, doc.Totals[3].Score)
	assert.Equal(t, "Ann", doc.Totals[3].Player)
	assert.Equal(t, -11, *doc.Totals[3].Score)
	assert.Equal(t, 1, doc.Totals[1].Stats.SelfDraws)
	assert.Empty(t, doc.History)

	var raw map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(env.mustRun("export")), &raw))
	assert.Equal(t, 1, raw["current_round"])

	_, err := env.run("export", "--format", "xml")
	assert.Error(t, err)
}

func TestCLIReset(t *testing.T) {
	env := newCLIEnv(t)
	env.mustRun("players", "add", "Ann")
	env.mustRun("round", "2", "--draw")
	assert.Contains(t, env.mustRun("reset", "--yes"), "All data erased.")
	assert.Contains(t, env.mustRun("players"), "No players yet.")
}
