package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/honeyhive/server/internal/format"
	"github.com/honeyhive/server/internal/game"
	"go.uber.org/zap"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	barStyle    = lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("214"))
	cardStyle   = lipgloss.NewStyle().Width(34).Padding(0, 1).Border(lipgloss.NormalBorder())
	lockedStyle = cardStyle.BorderForeground(lipgloss.Color("240")).Foreground(lipgloss.Color("244"))
	readyStyle  = cardStyle.BorderForeground(lipgloss.Color("78"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
)

type tickMsg time.Time

// Model is the bubbletea model. The session is only driven from Update.
type Model struct {
	session *game.Session
	board   *Board
	tick    time.Duration
	log     *zap.Logger
	status  string
	width   int
}

// New creates a model over a session whose presenter is board.
func New(session *game.Session, board *Board, tick time.Duration, log *zap.Logger) Model {
	if tick <= 0 {
		tick = 100 * time.Millisecond
	}
	return Model{session: session, board: board, tick: tick, log: log}
}

func (m Model) Init() tea.Cmd {
	return m.schedule()
}

func (m Model) schedule() tea.Cmd {
	return tea.Tick(m.tick, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.session.Tick(m.tick)
		return m, m.schedule()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch key := msg.String(); key {
		case "q", "ctrl+c":
			m.session.Settle()
			m.session.SaveNow()
			return m, tea.Quit
		case "n":
			m.session.NewGame()
			m.status = "Started a new game"
		case "c":
			if err := m.session.Continue(context.Background()); err != nil {
				m.log.Error("continue failed", zap.Error(err))
				m.status = "Could not load the save: " + err.Error()
			} else {
				m.status = "Save loaded"
			}
		case "s":
			m.session.SaveNow()
			m.status = "Saved"
		default:
			if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
				m.buy(int(key[0] - '1'))
			}
		}
	}
	return m, nil
}

func (m *Model) buy(i int) {
	cards := m.board.Cards()
	if i >= len(cards) {
		return
	}
	card := cards[i]
	m.status = fmt.Sprintf("%s: %s", card.Name, m.session.Buy(card.Kind))
}

func (m Model) View() string {
	var b strings.Builder

	res := m.board.resources
	b.WriteString(titleStyle.Render("HoneyHive"))
	b.WriteString("\n")
	b.WriteString(barStyle.Render(fmt.Sprintf(
		"Pollen %s   Nectar %s   Speed %s   Level %d  [%s / %s]",
		res.PollenText, res.NectarText, format.Percent(res.SpeedPercent), res.UserLevel,
		format.Short(res.LevelProgress), format.Short(res.LevelRequirement),
	)))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Lifetime pollen " + res.LifetimeText))
	b.WriteString("\n")

	var rows []string
	for i, c := range m.board.Cards() {
		style := cardStyle
		line := fmt.Sprintf("Cost %s %s", c.CostText, c.Resource)
		if lock := m.board.Lock(c.Kind); lock.Locked {
			style = lockedStyle
			line = lock.Reason
		} else if c.Affordable {
			style = readyStyle
		}
		amount := ""
		if c.ShowAmount || !c.Kind.Mobile() {
			amount = "  " + c.ValueText
		}
		rows = append(rows, style.Render(fmt.Sprintf("[%d] %s%s\n%s\n%s", i+1, c.Name, amount,
			dimStyle.Render(c.Description), line)))
	}
	for i := 0; i < len(rows); i += 2 {
		if i+1 < len(rows) {
			b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, rows[i], rows[i+1]))
		} else {
			b.WriteString(rows[i])
		}
		b.WriteString("\n")
	}

	for _, n := range m.board.Feed() {
		b.WriteString(noticeStyle.Render(n))
		b.WriteString("\n")
	}
	if m.status != "" {
		b.WriteString(m.status)
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render("1-9 buy · s save · c continue · n new game · q quit"))
	b.WriteString("\n")
	return b.String()
}
