// Package tui provides the Bubble Tea scoresheet interface.
package tui

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/rs/zerolog"

	"github.com/verte-zerg/mjtally/internal/model"
	"github.com/verte-zerg/mjtally/internal/scoring"
	"github.com/verte-zerg/mjtally/internal/session"
	statsPkg "github.com/verte-zerg/mjtally/internal/stats"
)

type mode int

const (
	modeNormal mode = iota
	modeFan
	modeConfirmClose
	modeConfirmReset
)

const (
	winnerNone = ""
	winnerDraw = "draw"
	loserNone  = ""
	loserZimo  = "zimo"

	historyPanelRows = 5

	labelWidth  = 16
	fanWidth    = 4
	resultWidth = 10
	seatWidth   = 14
)

var (
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	headerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	dealerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Background(lipgloss.Color("#3A3A3A")).Bold(true)
	positiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#73D13D"))
	negativeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	warningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	modalStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A")).
			Padding(1, 2)
)

// Model implements the Bubble Tea scoresheet UI.
type Model struct {
	sess *session.Session
	log  zerolog.Logger

	width  int
	height int

	cursor int
	mode   mode
	// drafts hold a picked winner whose payer is not chosen yet.
	drafts [model.RoundCount]model.Seat

	fanInput    textinput.Model
	showHistory bool

	warning string
	status  string
}

// NewModel constructs a scoresheet model over a loaded session.
func NewModel(sess *session.Session, log zerolog.Logger) *Model {
	input := textinput.New()
	input.Prompt = "Fan: "
	input.CharLimit = 4
	input.Width = 6
	return &Model{
		sess:     sess,
		log:      log,
		cursor:   sess.CurrentRound(),
		fanInput: input,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.mode {
		case modeFan:
			return m.updateFan(msg)
		case modeConfirmClose, modeConfirmReset:
			return m.updateConfirm(msg)
		}
		return m.updateNormal(msg)
	}
	return m, nil
}

func (m *Model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	m.warning = ""
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		m.moveCursor(-1)
	case "down", "j":
		m.moveCursor(1)
	case "g", "home":
		m.moveCursor(-m.cursor)
	case "G", "end":
		m.moveCursor(model.RoundCount - 1 - m.cursor)
	case "f", "enter":
		o, _ := m.sess.Outcome(m.cursor)
		m.fanInput.SetValue(strconv.Itoa(o.Fan))
		m.fanInput.CursorEnd()
		m.mode = modeFan
		return m, m.fanInput.Focus()
	case "w":
		m.cycleWinner()
	case "l":
		m.cycleLoser()
	case "x", "backspace", "delete":
		m.drafts[m.cursor] = ""
		m.report(m.sess.ClearRound(context.Background(), m.cursor))
	case "1", "2", "3", "4":
		seat := model.Seats[msg.Runes[0]-'1']
		name, err := m.sess.CycleSeat(context.Background(), seat)
		m.report(err)
		if name == "" {
			name = "nobody"
		}
		m.status = fmt.Sprintf("%s seat: %s", seat, name)
	case "c":
		m.mode = modeConfirmClose
	case "R":
		m.mode = modeConfirmReset
	case "h":
		m.showHistory = !m.showHistory
	}
	return m, nil
}

func (m *Model) updateFan(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeNormal
		m.fanInput.Blur()
		return m, nil
	case tea.KeyEnter:
		m.mode = modeNormal
		m.fanInput.Blur()
		o, _ := m.sess.Outcome(m.cursor)
		o.Fan = session.CoerceFan(m.fanInput.Value())
		m.report(m.sess.SetOutcome(context.Background(), m.cursor, o))
		return m, nil
	}
	var cmd tea.Cmd
	m.fanInput, cmd = m.fanInput.Update(msg)
	return m, cmd
}

func (m *Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	confirming := m.mode
	m.mode = modeNormal
	if msg.String() != "y" && msg.String() != "Y" {
		m.status = "Cancelled."
		return m, nil
	}
	ctx := context.Background()
	switch confirming {
	case modeConfirmClose:
		entry, err := m.sess.CloseSession(ctx)
		m.report(err)
		if errors.Is(err, session.ErrHistoryUnavailable) {
			return m, nil
		}
		m.drafts = [model.RoundCount]model.Seat{}
		m.cursor = 0
		m.status = fmt.Sprintf("Session closed: %s", formatTotals(entry.Totals))
	case modeConfirmReset:
		m.report(m.sess.ResetAll(ctx))
		m.drafts = [model.RoundCount]model.Seat{}
		m.cursor = 0
		m.status = "All data reset."
	}
	return m, nil
}

func (m *Model) moveCursor(delta int) {
	next := m.cursor + delta
	if next < 0 || next >= model.RoundCount {
		return
	}
	m.cursor = next
	m.report(m.sess.SetCurrentRound(context.Background(), next))
}

// rowPicks reports the winner and loser selections shown for a row.
func (m *Model) rowPicks(idx int) (winner, loser string) {
	o, _ := m.sess.Outcome(idx)
	switch o.Result {
	case model.ResultDraw:
		return winnerDraw, loserNone
	case model.ResultWin:
		if o.Method == model.MethodSelfDraw {
			return string(o.Winner), loserZimo
		}
		return string(o.Winner), string(o.Loser)
	}
	return string(m.drafts[idx]), loserNone
}

func (m *Model) cycleWinner() {
	options := []string{winnerNone, winnerDraw}
	for _, seat := range model.Seats {
		options = append(options, string(seat))
	}
	winner, loser := m.rowPicks(m.cursor)
	next := options[(indexOf(options, winner)+1)%len(options)]
	m.apply(next, loser)
}

func (m *Model) cycleLoser() {
	winner, loser := m.rowPicks(m.cursor)
	if winner == winnerNone || winner == winnerDraw {
		m.status = "Pick a winner first."
		return
	}
	options := []string{loserNone}
	for _, seat := range model.Seats {
		if string(seat) != winner {
			options = append(options, string(seat))
		}
	}
	options = append(options, loserZimo)
	next := options[(indexOf(options, loser)+1)%len(options)]
	m.apply(winner, next)
}

// apply records the winner and loser picks for the cursor row. A winner
// without a valid payer is kept as a draft and scores nothing.
func (m *Model) apply(winner, loser string) {
	o, _ := m.sess.Outcome(m.cursor)
	fan := o.Fan
	m.drafts[m.cursor] = ""
	var next model.RoundOutcome
	switch {
	case winner == winnerNone:
		next = model.RoundOutcome{Fan: fan}
	case winner == winnerDraw:
		next = model.Draw(fan)
	case loser == loserZimo:
		next = model.SelfDraw(model.Seat(winner), fan)
	case loser != loserNone && loser != winner:
		next = model.Discard(model.Seat(winner), model.Seat(loser), fan)
	default:
		m.drafts[m.cursor] = model.Seat(winner)
		next = model.RoundOutcome{Fan: fan}
	}
	m.report(m.sess.SetOutcome(context.Background(), m.cursor, next))
}

func (m *Model) report(err error) {
	if err == nil {
		return
	}
	m.log.Warn().Err(err).Int("round", m.cursor).Msg("scoresheet-update-failed")
	if errors.Is(err, session.ErrPersistence) {
		m.warning = "Not saved: " + err.Error()
		return
	}
	m.warning = err.Error()
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.mode == modeConfirmClose || m.mode == modeConfirmReset {
		return m.place(m.renderConfirm())
	}
	sections := []string{m.renderTitle(), m.renderSheet()}
	if m.showHistory {
		sections = append(sections, m.renderHistory())
	}
	sections = append(sections, m.renderFooter())
	return strings.Join(sections, "\n\n")
}

func (m *Model) place(content string) string {
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m *Model) renderTitle() string {
	recorded := scoring.Recorded(m.sess.Outcomes())
	return titleStyle.Render(fmt.Sprintf("Mahjong scoresheet  %d/%d rounds recorded  (%s)",
		recorded, model.RoundCount, m.sess.State()))
}

func (m *Model) renderSheet() string {
	seating := m.sess.Seating()
	tally := m.sess.Tally()

	header := []string{
		cell("Round", labelWidth, false),
		cell("Fan", fanWidth, true),
		cell("Result", resultWidth, false),
	}
	for _, seat := range model.Seats {
		header = append(header, cell(statsPkg.SeatLabel(seating, seat), seatWidth, true))
	}
	lines := []string{headerStyle.Render(strings.Join(header, " "))}

	for i, slot := range scoring.GenerateSchedule() {
		o, _ := m.sess.Outcome(i)
		result := statsPkg.DescribeOutcome(o)
		if draft := m.drafts[i]; draft != "" && o.Result == model.ResultUnset {
			result = fmt.Sprintf("%s ?", draft)
		}
		fan := ""
		if o.Result != model.ResultUnset || o.Fan > 0 {
			fan = strconv.Itoa(o.Fan)
		}
		cols := []string{
			cell(statsPkg.RoundLabel(slot, seating), labelWidth, false),
			cell(fan, fanWidth, true),
			cell(result, resultWidth, false),
		}
		for _, delta := range tally.Rounds[i] {
			text := ""
			if o.IsWin() {
				text = statsPkg.FormatSigned(delta)
			}
			cols = append(cols, cell(text, seatWidth, true))
		}
		line := strings.Join(cols, " ")
		switch {
		case i == m.cursor:
			line = selectedStyle.Render(line)
		case scoring.IsDealer(slot):
			line = dealerStyle.Render(line)
		}
		lines = append(lines, line)
	}

	totals := []string{cell("Total", labelWidth+fanWidth+resultWidth+2, false)}
	stats := []string{cell("", labelWidth+fanWidth+resultWidth+2, false)}
	for _, seat := range model.Seats {
		v := tally.Totals.Of(seat)
		text := cell(statsPkg.FormatSigned(v), seatWidth, true)
		switch {
		case v > 0:
			text = positiveStyle.Render(text)
		case v < 0:
			text = negativeStyle.Render(text)
		}
		totals = append(totals, text)
		stats = append(stats, cell(statsPkg.StatsLine(tally.Stats.Of(seat)), seatWidth, true))
	}
	lines = append(lines, strings.Join(totals, " "), headerStyle.Render(strings.Join(stats, " ")))
	return strings.Join(lines, "\n")
}

func (m *Model) renderHistory() string {
	history := m.sess.History()
	var buf bytes.Buffer
	if err := statsPkg.RenderHistory(&buf, statsPkg.LastN(history, historyPanelRows), false); err != nil {
		return warningStyle.Render(err.Error())
	}
	title := fmt.Sprintf("History (%d closed)", len(history))
	return headerStyle.Render(title) + "\n" + strings.TrimRight(buf.String(), "\n")
}

func (m *Model) renderConfirm() string {
	prompt := "Close this session and record it in history?"
	if m.mode == modeConfirmReset {
		prompt = "Erase the scoresheet, seating, players and all history?"
	}
	return modalStyle.Render(prompt + "\n\n" + footerStyle.Render("y: confirm  any other key: cancel"))
}

func (m *Model) renderFooter() string {
	var lines []string
	if m.mode == modeFan {
		lines = append(lines, m.fanInput.View()+"  "+footerStyle.Render("enter: save  esc: cancel"))
	} else {
		lines = append(lines, footerStyle.Render(
			"↑/↓ move  f fan  w winner  l loser  x clear  1-4 seat  h history  c close  R reset  q quit"))
	}
	if m.status != "" {
		lines = append(lines, footerStyle.Render(m.status))
	}
	if m.warning != "" {
		lines = append(lines, warningStyle.Render(m.warning))
	}
	return strings.Join(lines, "\n")
}

func cell(value string, width int, rightAlign bool) string {
	if runewidth.StringWidth(value) > width {
		value = runewidth.Truncate(value, width, "…")
	}
	if rightAlign {
		return runewidth.FillLeft(value, width)
	}
	return runewidth.FillRight(value, width)
}

func formatTotals(totals model.SeatScores) string {
	parts := make([]string, 0, model.SeatCount)
	for _, seat := range model.Seats {
		parts = append(parts, fmt.Sprintf("%s %s", seat, statsPkg.FormatSigned(totals.Of(seat))))
	}
	return strings.Join(parts, "  ")
}

func indexOf(options []string, value string) int {
	for i, option := range options {
		if option == value {
			return i
		}
	}
	return -1
}
