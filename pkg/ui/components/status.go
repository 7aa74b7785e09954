package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// SourceStatus is the health of one record source.
type SourceStatus struct {
	Name       string
	Healthy    bool
	Latency    time.Duration
	LastUpdate time.Time
}

// StatusComponent renders record source status.
type StatusComponent struct {
	sources []SourceStatus
}

// NewStatusComponent creates a new status component.
func NewStatusComponent() *StatusComponent {
	return &StatusComponent{}
}

// Update updates a source's status.
func (s *StatusComponent) Update(status SourceStatus) {
	for i, src := range s.sources {
		if src.Name == status.Name {
			s.sources[i] = status
			return
		}
	}
	s.sources = append(s.sources, status)
}

// Healthy reports whether every known source is healthy.
func (s *StatusComponent) Healthy() bool {
	for _, src := range s.sources {
		if !src.Healthy {
			return false
		}
	}
	return len(s.sources) > 0
}

// View renders the status line.
func (s *StatusComponent) View() string {
	if len(s.sources) == 0 {
		return "No sources"
	}

	parts := make([]string, 0, len(s.sources))
	for _, src := range s.sources {
		status := "● " + src.Name
		style := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true)
		if !src.Healthy {
			status = "○ " + src.Name + " (unavailable)"
			style = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)
		} else if src.Latency > 0 {
			status += fmt.Sprintf(" (%dms)", src.Latency.Milliseconds())
		}
		parts = append(parts, style.Render(status))
	}
	return strings.Join(parts, "  │  ")
}
