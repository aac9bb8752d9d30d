package prompt

import (
	"strings"
	"unicode/utf8"

	"github.com/suPer8Hu/askdb/internal/query"
)

const noRows = "(no rows)"

// RenderText lays res out as a space-padded plain-text table with a header
// line. An empty result still renders the header plus a "(no rows)" line.
func RenderText(res query.Result) string {
	if len(res.Columns) == 0 {
		return noRows
	}

	cells := make([][]string, 0, len(res.Rows)+1)
	cells = append(cells, res.Columns)
	for _, r := range res.Rows {
		line := make([]string, len(res.Columns))
		for i := range res.Columns {
			if i < len(r) {
				line[i] = query.FormatValue(r[i])
			}
		}
		cells = append(cells, line)
	}

	widths := make([]int, len(res.Columns))
	for _, line := range cells {
		for i, c := range line {
			if n := utf8.RuneCountInString(c); n > widths[i] {
				widths[i] = n
			}
		}
	}

	var b strings.Builder
	for li, line := range cells {
		if li > 0 {
			b.WriteByte('\n')
		}
		for i, c := range line {
			if i > 0 {
				b.WriteString("  ")
			}
			b.WriteString(c)
			if i < len(line)-1 {
				b.WriteString(strings.Repeat(" ", widths[i]-utf8.RuneCountInString(c)))
			}
		}
	}
	if len(res.Rows) == 0 {
		b.WriteByte('\n')
		b.WriteString(noRows)
	}
	return b.String()
}
