// Package tui renders the terminal dashboard: one card per tracked
// provider with a usage gauge, burn rate, projected depletion and a
// short consumption trend.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/janekbaraniewski/tokentrack/internal/core"
)

// DataSource is the slice of the tracker the dashboard needs.
type DataSource interface {
	Snapshots() map[core.ProviderID]core.UsageSnapshot
	History() map[core.ProviderID][]core.UsageSample
	LastErrors() map[core.ProviderID]error
	RefreshAll(ctx context.Context) map[core.ProviderID]core.UsageSnapshot
}

// SnapshotsMsg delivers a completed cycle's merged snapshots, either from
// the model's own refresh command or from an external ticker via
// Program.Send.
type SnapshotsMsg map[core.ProviderID]core.UsageSnapshot

type tickMsg time.Time

func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

type Model struct {
	source   DataSource
	interval time.Duration

	keys    KeyMap
	help    help.Model
	spinner spinner.Model

	snapshots map[core.ProviderID]core.UsageSnapshot
	history   map[core.ProviderID][]core.UsageSample
	errs      map[core.ProviderID]error
	order     []core.ProviderID

	cursor     int
	width      int
	height     int
	refreshing bool

	now func() time.Time
}

func NewModel(source DataSource, interval time.Duration) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorAccent)

	m := Model{
		source:   source,
		interval: interval,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		spinner:  sp,
		now:      time.Now,
	}
	m.setSnapshots(source.Snapshots())
	m.history = source.History()
	m.errs = source.LastErrors()
	return m
}

func (m *Model) setSnapshots(snapshots map[core.ProviderID]core.UsageSnapshot) {
	m.snapshots = snapshots
	m.order = m.order[:0]
	for _, id := range core.AllProviderIDs() {
		if _, ok := snapshots[id]; ok {
			m.order = append(m.order, id)
		}
	}
	if m.cursor >= len(m.order) {
		m.cursor = 0
	}
}

func (m Model) refreshCmd() tea.Cmd {
	source := m.source
	return func() tea.Msg {
		return SnapshotsMsg(source.RefreshAll(context.Background()))
	}
}

// Init schedules the refresh loop. A non-positive interval means an
// external driver owns the cadence and only manual refreshes run here.
func (m Model) Init() tea.Cmd {
	if m.interval <= 0 {
		return m.spinner.Tick
	}
	return tea.Batch(m.spinner.Tick, m.refreshCmd(), tickCmd(m.interval))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		m.refreshing = true
		return m, tea.Batch(m.refreshCmd(), tickCmd(m.interval))

	case SnapshotsMsg:
		m.refreshing = false
		m.setSnapshots(map[core.ProviderID]core.UsageSnapshot(msg))
		m.history = m.source.History()
		m.errs = m.source.LastErrors()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Refresh):
			if !m.refreshing {
				m.refreshing = true
				return m, m.refreshCmd()
			}
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.order)-1 {
				m.cursor++
			}
		}
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.headerView())
	b.WriteString("\n\n")

	if len(m.order) == 0 {
		b.WriteString(dimStyle.Render("  No providers configured. Run `tokentrack key` to add an API key."))
		b.WriteString("\n")
	} else {
		for i, id := range m.order {
			b.WriteString(m.cardView(id, i == m.cursor))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))
	return b.String()
}

func (m Model) headerView() string {
	title := headerBrandStyle.Render("tokentrack") + headerStyle.Render(" · usage dashboard")
	if m.refreshing {
		return title + "  " + m.spinner.View() + dimStyle.Render("refreshing")
	}
	return title
}

func (m Model) cardView(id core.ProviderID, selected bool) string {
	snap := m.snapshots[id]
	now := m.now()

	titleStyle := cardTitleStyle
	frame := cardStyle
	if selected {
		titleStyle = cardTitleSelectedStyle
		frame = cardSelectedStyle
	}

	gaugeWidth := m.width - 24
	if gaugeWidth < 20 {
		gaugeWidth = 20
	}
	if gaugeWidth > 60 {
		gaugeWidth = 60
	}

	var lines []string
	lines = append(lines, titleStyle.Render(core.DisplayName(id))+
		dimStyle.Render("  "+FormatAge(snap.UpdatedAt, now)))
	lines = append(lines, RenderUsageGauge(usedPercent(snap), gaugeWidth))
	lines = append(lines, fmt.Sprintf("%s %s %s %s",
		labelStyle.Render("remaining"),
		valueStyle.Render(FormatAmount(snap.Remaining, snap.Unit)),
		labelStyle.Render("of"),
		valueStyle.Render(FormatAmount(snap.Limit, snap.Unit))))
	lines = append(lines, fmt.Sprintf("%s %s   %s %s",
		labelStyle.Render("burn"),
		valueStyle.Render(FormatBurnRate(snap.BurnRatePerMinute, snap.Unit)),
		labelStyle.Render("depletes"),
		valueStyle.Render(FormatETA(snap, now))))
	lines = append(lines, RenderHistorySparkline(m.history[id], gaugeWidth))

	if err := m.errs[id]; err != nil {
		lines = append(lines, errStyle.Render("⚠ "+err.Error())+dimStyle.Render("  (showing last good data)"))
	}

	return frame.Render(strings.Join(lines, "\n"))
}
