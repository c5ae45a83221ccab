package explain

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B"))
	nameStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5B8DEF"))
	requirerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#AAAAAA"))
)

// Render writes a human-readable report of the conflicts on w.
// If styled is true, the report is colored for a terminal.
//
// For instance, the unstyled report of a single conflict reads:
//
//	1 conflict prevents resolution
//	ConflictingDependency
//	  App ⇒ =1.0.0
//	  Sql ⇒ =2.0.0
func Render(w io.Writer, conflicts []Conflict, styled bool) error {
	style := func(s lipgloss.Style, str string) string {
		if !styled {
			return str
		}
		return s.Render(str)
	}
	var sb strings.Builder
	plural := "s prevent"
	if len(conflicts) == 1 {
		plural = " prevents"
	}
	sb.WriteString(style(headerStyle, fmt.Sprintf("%d conflict%s resolution", len(conflicts), plural)))
	sb.WriteByte('\n')
	for _, c := range conflicts {
		sb.WriteString(style(nameStyle, c.PluginName))
		sb.WriteByte('\n')
		for _, v := range c.Versions {
			sb.WriteString("  ")
			sb.WriteString(style(requirerStyle, v.RequiredBy))
			sb.WriteString(" ⇒ ")
			sb.WriteString(v.RequiredVersion.String())
			sb.WriteByte('\n')
		}
	}
	if _, err := io.WriteString(w, sb.String()); err != nil {
		return errors.Wrap(err, "could not write conflict report")
	}
	return nil
}
