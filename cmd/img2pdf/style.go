package main

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// labelWidth aligns "Label:" columns in listings.
const labelWidth = 10

// styles holds the text styles of one output stream. Colors are chosen
// from the stream's capabilities, so output to a pipe or file stays plain.
type styles struct {
	title lipgloss.Style
	label lipgloss.Style
	dim   lipgloss.Style
	mark  lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		title: r.NewStyle().Bold(true),
		label: r.NewStyle().Foreground(lipgloss.Color("6")).Width(labelWidth),
		dim:   r.NewStyle().Faint(true),
		mark:  r.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
	}
}

// field renders "label value", showing a dim dash for empty values.
func (s styles) field(label, value string) string {
	if value == "" {
		value = s.dim.Render("-")
	}
	return s.label.Render(label+":") + " " + value
}
