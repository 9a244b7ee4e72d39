package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/johnespinosa/workbench/internal/model"
)

var (
	sidebarStyle = lipgloss.NewStyle().
			Width(sidebarWidth).
			Border(lipgloss.NormalBorder(), false, true, false, false).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().Bold(true)

	focusedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	promptStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)
)

// View renders the sidebar (workspaces + sessions), the focused session's
// screen, a status line, and, in ModePrompt, a prompt box. Layout is a
// single fixed split — spec.md §1 excludes resizable pane layout math from
// this program's scope.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	sidebar := sidebarStyle.Height(m.mainRows()).Render(m.renderSidebar())
	main := m.renderMain()
	body := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, main)

	status := m.renderStatus()
	out := lipgloss.JoinVertical(lipgloss.Left, body, status)

	if m.mode == ModePrompt {
		out = lipgloss.JoinVertical(lipgloss.Left, out, promptStyle.Render(m.promptLabel()+m.promptBuf+"█"))
	}
	return out
}

func (m Model) promptLabel() string {
	if m.promptPurpose == promptNewTodo {
		return "new todo: "
	}
	return "parallel task prompt: "
}

func (m Model) renderSidebar() string {
	var b strings.Builder
	snaps := m.eng.Snapshot()
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].Workspace.CreatedAt.Before(snaps[j].Workspace.CreatedAt) })

	for _, snap := range snaps {
		ws := snap.Workspace
		b.WriteString(headerStyle.Render(ws.Name))
		b.WriteString(" ")
		b.WriteString(dimStyle.Render("(" + ws.Status.String() + ")"))
		b.WriteString("\n")

		sort.Slice(snap.Sessions, func(i, j int) bool { return snap.Sessions[i].StartedAt.Before(snap.Sessions[j].StartedAt) })
		for _, s := range snap.Sessions {
			line := fmt.Sprintf("  %s [%s]", sessionLabel(s), s.Status.String())
			if s.ID == m.focusSession {
				b.WriteString(focusedStyle.Render("> " + line))
			} else {
				b.WriteString(dimStyle.Render("  " + line))
			}
			b.WriteString("\n")
		}

		for _, t := range ws.Todos {
			b.WriteString(dimStyle.Render(fmt.Sprintf("  · %s [%s]", t.Description, todoStatusLabel(t.Status))))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func sessionLabel(s *model.Session) string {
	if s.Agent.IsTerminal() && s.TerminalName != "" {
		return s.TerminalName
	}
	return s.Agent.String()
}

func todoStatusLabel(s model.TodoStatus) string {
	switch s {
	case model.TodoSuggested:
		return "suggested"
	case model.TodoPending:
		return "pending"
	case model.TodoQueued:
		return "queued"
	case model.TodoInProgress:
		return "in progress"
	case model.TodoReadyForReview:
		return "ready for review"
	case model.TodoDone:
		return "done"
	default:
		return "archived"
	}
}

func (m Model) renderMain() string {
	if m.focusSession == uuid.Nil {
		return lipgloss.NewStyle().Width(m.mainCols()).Height(m.mainRows()).Render("no session focused — press n to create one")
	}
	buf := m.eng.Screen(m.focusSession)
	if buf == nil {
		return lipgloss.NewStyle().Width(m.mainCols()).Height(m.mainRows()).Render("session has no screen")
	}
	return lipgloss.NewStyle().Width(m.mainCols()).Height(m.mainRows()).Render(buf.Render())
}

func (m Model) renderStatus() string {
	modeLabel := "NORMAL"
	if m.mode == ModeInsert {
		modeLabel = "INSERT"
	}
	parts := []string{modeLabel}
	if m.status != "" {
		parts = append(parts, m.status)
	}
	if m.debug {
		d := m.eng.Debug()
		parts = append(parts, fmt.Sprintf("workspaces=%d sessions=%d idle=%d term=%d pty=%d internal=%d",
			d.WorkspaceCount, d.SessionCount, d.IdleQueueDepth,
			len(m.rtr.Terminal()), len(m.rtr.PTYOutput()), len(m.rtr.Internal())))
	}
	return statusStyle.Render(strings.Join(parts, " | "))
}

func splitLines(s string) []string {
	return strings.Split(s, "\n")
}
