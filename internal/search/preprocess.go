package search

import (
	"bufio"
	"io"
	"regexp"
	"strings"
)

// rawSection is a destination heading and its unprocessed tips.
type rawSection struct {
	name string
	tips []string
}

var (
	bulletRE  = regexp.MustCompile(`^(?:[-*+]|\d+[.)])\s+`)
	headingRE = regexp.MustCompile(`^(#{1,6})\s+(.*)$`)
)

// parseSections splits Markdown into "## <Destination>" sections.
//
// Within a section every non-empty line is one tip. Bullet markers are
// stripped, table rows are flattened into "cell cell ..." and separator rows
// are dropped. Deeper headings and content before the first "##" heading
// are ignored.
func parseSections(r io.Reader) ([]rawSection, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var out []rawSection
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if m := headingRE.FindStringSubmatch(line); m != nil {
			if len(m[1]) == 2 {
				out = append(out, rawSection{name: strings.TrimSpace(m[2])})
			}
			continue
		}
		if line == "" || len(out) == 0 {
			continue
		}

		cur := &out[len(out)-1]
		switch {
		case strings.HasPrefix(line, "|") && strings.HasSuffix(line, "|"):
			if row := flattenRow(line); row != "" {
				cur.tips = append(cur.tips, row)
			}
		default:
			cur.tips = append(cur.tips, bulletRE.ReplaceAllString(line, ""))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// flattenRow joins the non-empty cells of a table row. Separator rows
// ("|---|:--:|") yield "".
func flattenRow(line string) string {
	cols := strings.Split(strings.Trim(line, "|"), "|")
	cells := make([]string, 0, len(cols))
	allSep := true
	for _, c := range cols {
		cell := strings.TrimSpace(c)
		if strings.Trim(cell, ":- ") != "" {
			allSep = false
		}
		if cell != "" {
			cells = append(cells, cell)
		}
	}
	if allSep {
		return ""
	}
	return strings.Join(cells, " ")
}
