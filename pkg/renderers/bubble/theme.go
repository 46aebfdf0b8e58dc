package bubble

import "github.com/charmbracelet/lipgloss"

// Catppuccin Mocha, the subset the form view uses.
const (
	colorRed      lipgloss.Color = "#f38ba8"
	colorGreen    lipgloss.Color = "#a6e3a1"
	colorLavender lipgloss.Color = "#b4befe"
	colorPink     lipgloss.Color = "#f5c2e7"
	colorText     lipgloss.Color = "#cdd6f4"
	colorSubtext0 lipgloss.Color = "#a6adc8"
	colorOverlay1 lipgloss.Color = "#7f849c"
	colorSurface1 lipgloss.Color = "#45475a"
)

// Styles groups the lipgloss styles used by View.
type Styles struct {
	Title         lipgloss.Style
	Tab           lipgloss.Style
	ActiveTab     lipgloss.Style
	Label         lipgloss.Style
	FocusedLabel  lipgloss.Style
	Value         lipgloss.Style
	Placeholder   lipgloss.Style
	Error         lipgloss.Style
	Status        lipgloss.Style
	StatusError   lipgloss.Style
	Help          lipgloss.Style
	FocusedMarker string
	BlurredMarker string
}

// DefaultStyles returns the stock palette.
func DefaultStyles() Styles {
	return Styles{
		Title:         lipgloss.NewStyle().Bold(true).Foreground(colorPink).MarginBottom(1),
		Tab:           lipgloss.NewStyle().Foreground(colorOverlay1).Padding(0, 1),
		ActiveTab:     lipgloss.NewStyle().Bold(true).Foreground(colorText).Background(colorSurface1).Padding(0, 1),
		Label:         lipgloss.NewStyle().Foreground(colorSubtext0),
		FocusedLabel:  lipgloss.NewStyle().Bold(true).Foreground(colorLavender),
		Value:         lipgloss.NewStyle().Foreground(colorText),
		Placeholder:   lipgloss.NewStyle().Foreground(colorOverlay1).Italic(true),
		Error:         lipgloss.NewStyle().Foreground(colorRed).PaddingLeft(4),
		Status:        lipgloss.NewStyle().Foreground(colorGreen),
		StatusError:   lipgloss.NewStyle().Foreground(colorRed),
		Help:          lipgloss.NewStyle().Foreground(colorOverlay1),
		FocusedMarker: "› ",
		BlurredMarker: "  ",
	}
}
