package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// DefaultPreviewLength is how many characters of the note the widget shows
const DefaultPreviewLength = 40

// WidgetSummary is what the widget surface displays for a state
type WidgetSummary struct {
	Label       string
	Body        string
	HasPhoto    bool
	PhotoPath   string
	ToggleLabel string
	EditorMode  Mode
	Alignment   TextAlignment
	Bold        bool
}

// Summarize builds the widget surface contents for state.
// A stored photo that can no longer be read is shown as "No photo".
func Summarize(state WidgetState, previewLen int) WidgetSummary {
	if previewLen <= 0 {
		previewLen = DefaultPreviewLength
	}
	s := WidgetSummary{
		EditorMode: state.Mode,
		Alignment:  AlignCenter,
	}
	if state.Mode == ModeText {
		s.Label = "Text note"
		s.ToggleLabel = "Show photo"
		s.Body = previewText(state.Text.Content, previewLen)
		s.Alignment = state.Text.Style.Alignment
		s.Bold = state.Text.Style.IsBold
		return s
	}

	s.Label = "Photo note"
	s.ToggleLabel = "Show text"
	if state.HasPhoto() && photoReadable(state.Photo.Path) {
		s.HasPhoto = true
		s.PhotoPath = state.Photo.Path
		s.Body = filepath.Base(state.Photo.Path)
	} else {
		s.Body = "No photo"
	}
	return s
}

// previewText truncates content to n runes, marking the cut with an ellipsis
func previewText(content string, n int) string {
	if strings.TrimSpace(content) == "" {
		return "(Empty note)"
	}
	runes := []rune(content)
	if len(runes) <= n {
		return content
	}
	return string(runes[:n]) + "…"
}

// RenderTile draws the summary as a rounded terminal card
func RenderTile(s WidgetSummary, width int) string {
	if width < 20 {
		width = 20
	}
	inner := width - 4

	label := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#6C757D")).
		Width(inner).
		Align(lipgloss.Center).
		Render(s.Label)

	bodyStyle := lipgloss.NewStyle().
		Width(inner).
		Align(lipgloss.Center).
		Padding(1, 0)
	switch s.Alignment {
	case AlignLeft:
		bodyStyle = bodyStyle.Align(lipgloss.Left)
	case AlignRight:
		bodyStyle = bodyStyle.Align(lipgloss.Right)
	}
	if s.Bold {
		bodyStyle = bodyStyle.Bold(true)
	}
	if s.EditorMode == ModePhoto && !s.HasPhoto {
		bodyStyle = bodyStyle.Faint(true)
	}
	body := bodyStyle.Render(s.Body)

	button := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color("#3D6DFF")).
		Padding(0, 1)
	buttons := lipgloss.NewStyle().Width(inner).Align(lipgloss.Center).Render(
		lipgloss.JoinHorizontal(lipgloss.Top, button.Render(s.ToggleLabel), " ", button.Render("Edit")),
	)

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#3D6DFF")).
		Padding(0, 1).
		Render(lipgloss.JoinVertical(lipgloss.Left, label, body, buttons))
}

// ToggleMode flips the persisted mode, as the widget's toggle button does
func ToggleMode(ctx context.Context, repo Repository) (WidgetState, error) {
	current := repo.Read(ctx)
	current.Mode = current.Mode.Toggle()
	if err := repo.Write(ctx, current); err != nil {
		return current, fmt.Errorf("failed to toggle mode: %w", err)
	}
	return current, nil
}

// EditorLaunch is the request to open the editor on a given surface
type EditorLaunch struct {
	Mode Mode `json:"mode"`
}

// Arg returns the launch parameter value ("photo" or "text")
func (l EditorLaunch) Arg() string {
	if l.Mode == ModeText {
		return "text"
	}
	return "photo"
}

// ParseEditorLaunch reads the launch parameter, defaulting to the photo editor
func ParseEditorLaunch(arg string) EditorLaunch {
	mode, err := ParseMode(arg)
	if err != nil {
		return EditorLaunch{Mode: ModePhoto}
	}
	return EditorLaunch{Mode: mode}
}

// OpenEditorFor returns the launch request the widget's edit button sends for state
func OpenEditorFor(state WidgetState) EditorLaunch {
	return EditorLaunch{Mode: state.Mode}
}

// photoReadable reports whether the photo at path can be opened by the renderer
func photoReadable(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
