package tui

import (
	"github.com/charmbracelet/glamour"
	"github.com/rs/zerolog/log"

	"github.com/colonyops/tick/internal/core/styles"
)

const helpMarkdown = `# tick

## Tasks

| Key | Action |
|-----|--------|
| ` + "`a`" + ` | add a task to the current tab |
| ` + "`e`" + ` / ` + "`enter`" + ` | edit the selected task |
| ` + "`space`" + ` / ` + "`x`" + ` | toggle done |
| ` + "`d`" + ` | delete (asks first) |
| ` + "`u`" + ` | undo the last delete while its notice is shown |

## Views

| Key | Action |
|-----|--------|
| ` + "`←`" + ` / ` + "`→`" + ` | switch category |
| ` + "`1`" + `-` + "`4`" + ` | jump to a category |
| ` + "`T`" + ` | toggle light and dark theme |
| ` + "`esc`" + ` | dismiss the newest notice |
| ` + "`N`" + ` | notification history |
| ` + "`q`" + ` | quit |

Tasks added from the **All** tab are filed under *personal*.
`

// renderHelp renders the help document for the current theme. On failure
// the raw markdown is returned.
func renderHelp(width int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(styles.GlamourStyle()),
		glamour.WithWordWrap(max(width-4, 40)),
	)
	if err != nil {
		log.Warn().Err(err).Msg("failed to create help renderer")
		return helpMarkdown
	}

	out, err := r.Render(helpMarkdown)
	if err != nil {
		log.Warn().Err(err).Msg("failed to render help")
		return helpMarkdown
	}
	return out
}
