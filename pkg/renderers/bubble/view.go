package bubble

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/goliatone/go-formstate/pkg/formstate"
	"github.com/goliatone/go-formstate/pkg/schema"
)

const helpLine = "enter/ctrl+↓ next • ctrl+↑ previous • tab section • space toggle • ctrl+s save • esc quit"

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder
	if title := firstNonEmpty(m.def.Title, schema.Labelize(m.def.ID)); title != "" {
		b.WriteString(m.styles.Title.Render(title))
		b.WriteString("\n")
	}

	tabs := make([]string, 0, len(m.sections))
	for idx, section := range m.sections {
		label := firstNonEmpty(section.Label, schema.Labelize(section.ID))
		if idx == m.section {
			tabs = append(tabs, m.styles.ActiveTab.Render(label))
			continue
		}
		tabs = append(tabs, m.styles.Tab.Render(label))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	b.WriteString("\n\n")

	for _, spec := range m.sections[m.section].Fields {
		b.WriteString(m.fieldView(spec))
		b.WriteString("\n")
	}

	if m.status != "" {
		b.WriteString("\n")
		if m.statusErr {
			b.WriteString(m.styles.StatusError.Render(m.status))
		} else {
			b.WriteString(m.styles.Status.Render(m.status))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.styles.Help.Render(helpLine))
	return b.String()
}

func (m *Model) fieldView(spec schema.FieldSpec) string {
	props := m.props(spec)
	focused := spec.FieldPath() == m.focus

	marker, labelStyle := m.styles.BlurredMarker, m.styles.Label
	if focused {
		marker, labelStyle = m.styles.FocusedMarker, m.styles.FocusedLabel
	}

	line := marker + labelStyle.Render(spec.DisplayLabel()+":") + " " + m.valueView(spec, props, focused)
	if props.Error != "" && (props.Touched || m.visited[spec.FieldPath()]) {
		line += "\n" + m.styles.Error.Render(props.Error)
	}
	return line
}

func (m *Model) valueView(spec schema.FieldSpec, props formstate.FieldProps, focused bool) string {
	value := formstate.StringValue(props.Value)
	switch props.Type {
	case formstate.InputCheckbox:
		if props.Checked {
			return m.styles.Value.Render("[x]")
		}
		return m.styles.Value.Render("[ ]")
	case formstate.InputSelect, formstate.InputRadio:
		for _, opt := range spec.Options {
			if opt.Value == value {
				return m.styles.Value.Render("‹ " + firstNonEmpty(opt.Label, opt.Value) + " ›")
			}
		}
		return m.styles.Placeholder.Render("‹ choose ›")
	case formstate.InputFile:
		return m.styles.Placeholder.Render("(file selection is not available in the terminal)")
	case formstate.InputPassword:
		value = maskValue(value)
	}
	if value == "" && spec.Placeholder != "" {
		return m.styles.Placeholder.Render(spec.Placeholder)
	}
	if focused {
		value += "▏"
	}
	return m.styles.Value.Render(value)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
