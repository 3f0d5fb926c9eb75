package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/N1teshift/replay-meta/types"
)

// keyMap defines the TUI key bindings.
type keyMap struct {
	Quit key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c", "esc"),
		key.WithHelp("q", "quit"),
	),
}

// MatchModel is a Bubble Tea model that displays one decoded match: a
// summary box and a scrollable players table.
type MatchModel struct {
	result   *types.DecodeResult
	players  table.Model
	width    int
	height   int
	quitting bool
}

// NewMatchModel creates a match inspector model.
func NewMatchModel(result *types.DecodeResult) MatchModel {
	columns := []table.Column{
		{Title: "Slot", Width: 4},
		{Title: "Name", Width: 18},
		{Title: "Race", Width: 10},
		{Title: "Team", Width: 4},
		{Title: "Result", Width: 6},
		{Title: "Gold", Width: 8},
		{Title: "Kills", Width: 6},
	}

	rows := make([]table.Row, 0, len(result.Metadata.Players))
	for _, p := range result.Metadata.Players {
		gold, kills := "-", "-"
		if p.Stats != nil {
			gold = strconv.FormatInt(p.Stats.GoldAcquired, 10)
			k := p.Stats.Kills
			kills = strconv.FormatInt(k.Elk+k.Hawk+k.Snake+k.Wolf+k.Bear+k.Panther, 10)
		}
		rows = append(rows, table.Row{
			strconv.Itoa(p.SlotIndex),
			p.Name,
			p.Race,
			strconv.Itoa(p.Team),
			p.Result,
			gold,
			kills,
		})
	}

	styles := table.DefaultStyles()
	styles.Header = TableHeaderStyle
	styles.Selected = TableSelectedStyle

	players := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(min(len(rows)+1, 12)),
		table.WithFocused(true),
		table.WithStyles(styles),
	)

	return MatchModel{result: result, players: players}
}

// Init implements tea.Model.
func (m MatchModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m MatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.players, cmd = m.players.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m MatchModel) View() string {
	if m.quitting {
		return ""
	}

	meta := m.result.Metadata

	var b strings.Builder
	b.WriteString(TitleStyle.Render(fmt.Sprintf("%s v%s", meta.MapName, meta.MapVersion)))
	b.WriteString("\n\n")

	rows := [][]string{
		{"Match ID", meta.MatchID},
		{"Schema", fmt.Sprintf("v%d", meta.SchemaVersion)},
		{"Duration", fmt.Sprintf("%.0fs", meta.DurationSeconds)},
		{"Players", strconv.Itoa(meta.PlayerCount)},
		{"Checksum", strconv.FormatInt(meta.Checksum, 10)},
		{"Spec", fmt.Sprintf("v%d", m.result.SpecVersion)},
	}
	for _, row := range rows {
		b.WriteString(fmt.Sprintf("%s %s\n", LabelStyle.Render(row[0]+":"), ValueStyle.Render(row[1])))
	}

	b.WriteString("\n")
	b.WriteString(m.players.View())

	help := HelpStyle.Render("↑/↓ to scroll, q to quit")
	return BoxStyle.Render(b.String()) + "\n" + help
}

// Run starts the match inspector for a decoded result.
func Run(result *types.DecodeResult) error {
	_, err := tea.NewProgram(NewMatchModel(result)).Run()
	return err
}
