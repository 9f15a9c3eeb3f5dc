// Package historyui provides the Bubble Tea history browser.
package historyui

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/mjtally/internal/model"
	"github.com/verte-zerg/mjtally/internal/stats"
)

const (
	tabHistory = iota
	tabLeaderboard
)

const trendWidth = 16

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// Model implements the Bubble Tea history browser.
type Model struct {
	entries []model.HistoryEntry
	last    int

	tabs      []string
	activeTab int
	history   viewport.Model
	board     table.Model

	width  int
	height int

	filterMode  bool
	filterInput textinput.Model
	filterError string
}

// NewModel constructs a history browser over closed sessions, oldest first.
// last > 0 limits both tabs to the newest games.
func NewModel(entries []model.HistoryEntry, last int) *Model {
	m := &Model{
		entries:     entries,
		last:        last,
		tabs:        []string{"History", "Leaderboard"},
		history:     viewport.New(0, 0),
		board:       buildBoardTable(nil, nil, 80, 10),
		filterInput: newFilterInput("Last N games (empty for all): "),
	}
	m.refresh()
	return m
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
		m.updateLayout()
		m.refresh()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "left", "h", "right", "l", "tab":
			m.activeTab = (m.activeTab + 1) % len(m.tabs)
			if m.activeTab == tabLeaderboard {
				m.board.Focus()
			} else {
				m.board.Blur()
			}
			return m, tea.ClearScreen
		case "/":
			m.filterMode = true
			m.filterError = ""
			if m.last > 0 {
				m.filterInput.SetValue(strconv.Itoa(m.last))
			} else {
				m.filterInput.SetValue("")
			}
			return m, m.filterInput.Focus()
		case "g", "home":
			if m.activeTab == tabLeaderboard {
				m.board.GotoTop()
			} else {
				m.history.GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabLeaderboard {
				m.board.GotoBottom()
			} else {
				m.history.GotoBottom()
			}
			return m, nil
		}
		var cmd tea.Cmd
		if m.activeTab == tabLeaderboard {
			m.board, cmd = m.board.Update(msg)
		} else {
			m.history, cmd = m.history.Update(msg)
		}
		return m, cmd
	}
	return m, nil
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		m.filterError = ""
		m.filterInput.Blur()
		return m, nil
	case tea.KeyEnter:
		last, err := parseLast(m.filterInput.Value())
		if err != nil {
			m.filterError = err.Error()
			return m, nil
		}
		m.last = last
		m.filterMode = false
		m.filterError = ""
		m.filterInput.Blur()
		m.refresh()
		return m, nil
	}
	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if m.filterError != "" {
		footerHeight++
	}
	bodyHeight = max(1, m.height-headerHeight-footerHeight)
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.history.Width = m.width
	m.history.Height = bodyHeight
	m.board.SetWidth(m.width)
	m.board.SetHeight(max(1, bodyHeight-1))
	m.filterInput.Width = max(10, m.width-lipgloss.Width(m.filterInput.Prompt)-2)
}

func (m *Model) refresh() {
	window := stats.LastN(m.entries, m.last)
	var buf bytes.Buffer
	if err := stats.RenderHistory(&buf, window, false); err != nil {
		m.history.SetContent("Failed to render history: " + err.Error())
	} else {
		m.history.SetContent(strings.TrimRight(buf.String(), "\n"))
	}
	cols, rows := buildBoardData(stats.BuildLeaderboard(m.entries, m.last), window)
	m.board.SetColumns(cols)
	m.board.SetRows(rows)
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	return m.renderTabs() + "\n" + headerStyle.Render(truncateLine(m.renderFilterSummary(), m.width))
}

func (m *Model) renderFilterSummary() string {
	last := "all"
	if m.last > 0 {
		last = strconv.Itoa(m.last)
	}
	return fmt.Sprintf("Closed sessions: %d  showing: last=%s", len(m.entries), last)
}

func (m *Model) renderBody() string {
	if m.filterMode {
		return "Filter (enter to apply, esc to cancel)\n" + m.filterInput.View()
	}
	if len(m.entries) == 0 {
		return "No closed sessions yet."
	}
	if m.activeTab == tabLeaderboard {
		return tableMutedStyle.Render(m.board.View())
	}
	return m.history.View()
}

func (m *Model) renderFooter() string {
	help := "Tabs: left/right  Scroll: up/down/pgup/pgdn  Filter: /  Quit: q"
	if m.filterMode {
		help = "enter: apply  esc: cancel"
	}
	footer := headerStyle.Render(help)
	if m.filterError != "" {
		footer += "\n" + errorStyle.Render(m.filterError)
	}
	return footer
}

func newFilterInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 6
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func parseLast(value string) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("last must be a non-negative whole number, got %q", value)
	}
	return n, nil
}

func buildBoardData(rows []stats.PlayerRow, entries []model.HistoryEntry) ([]table.Column, []table.Row) {
	columns := []table.Column{
		{Title: "Player", Width: 14},
		{Title: "Games", Width: 5},
		{Title: "Total", Width: 7},
		{Title: "Avg", Width: 7},
		{Title: "Best", Width: 6},
		{Title: "Worst", Width: 6},
		{Title: "Tops", Width: 4},
		{Title: "Trend", Width: trendWidth},
	}
	out := make([]table.Row, 0, len(rows))
	for _, r := range rows {
		trend := stats.Sparkline(stats.Cumulative(stats.Trend(entries, r.Who)))
		out = append(out, table.Row{
			r.Name,
			strconv.Itoa(r.Games),
			stats.FormatSigned(r.Total),
			fmt.Sprintf("%.1f", r.Average),
			stats.FormatSigned(r.Best),
			stats.FormatSigned(r.Worst),
			strconv.Itoa(r.Tops),
			trendTail(trend, trendWidth),
		})
	}
	return columns, out
}

// trendTail keeps the newest end of a sparkline that does not fit.
func trendTail(trend string, width int) string {
	runes := []rune(trend)
	if len(runes) <= width {
		return trend
	}
	return string(runes[len(runes)-width:])
}

func buildBoardTable(rows []stats.PlayerRow, entries []model.HistoryEntry, width, height int) table.Model {
	cols, data := buildBoardData(rows, entries)
	t := table.New(
		table.WithColumns(cols),
		table.WithRows(data),
		table.WithHeight(max(1, height-1)),
	)
	t.SetWidth(width)
	t.SetStyles(boardStyles())
	return t
}

func boardStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	if width <= 3 {
		return runewidth.Truncate(s, width, "")
	}
	return runewidth.Truncate(s, width, "...")
}
