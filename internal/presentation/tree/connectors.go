package tree

import "strings"

// Connector glyphs.
const (
	edgeVertical   = '│'
	edgeHorizontal = '─'
	edgeStartUnder = '├' // first child sits under its parent
	edgeStartRight = '└' // first child sits right of its parent
	edgeEnd        = '┐'
	edgeTee        = '┬'
)

// edgeGroup is a parent column and the columns of its children.
type edgeGroup struct {
	parent   int
	children []int
}

// connectors draws one row per edge group, the first group at the bottom, and joins the
// vertical lines that cross rows of other groups.
func (r *Renderer) connectors(groups []edgeGroup) string {
	if len(groups) == 0 {
		return ""
	}

	rows := make([][]rune, len(groups))
	longest := 0
	for i, g := range groups {
		rows[i] = r.edgeRow(g)
		longest = max(longest, len(rows[i]))
	}
	for i := range rows {
		for len(rows[i]) < longest {
			rows[i] = append(rows[i], ' ')
		}
	}

	// Bottom-up: a parent's line keeps climbing to its box through the rows above it.
	sweep(rows, edgeStartUnder, edgeStartRight, edgeVertical)
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	// Top-down: a child's line keeps falling to its box through the rows below it.
	sweep(rows, edgeStartUnder, edgeEnd, edgeVertical, edgeTee)

	lines := make([]string, len(rows))
	for i, row := range rows {
		lines[i] = string(row)
	}
	return strings.Join(lines, "\n")
}

// edgeRow draws the connector of a single group, offset to the center of the parent box.
func (r *Renderer) edgeRow(g edgeGroup) []rune {
	row := []rune(strings.Repeat(" ", g.parent*r.boxWidth+r.left+1))

	last := g.children[len(g.children)-1]
	length := (last - g.parent) * r.boxWidth
	if length == 0 {
		return append(row, edgeVertical)
	}

	edge := make([]rune, length+1)
	for i := range edge {
		edge[i] = edgeHorizontal
	}
	for _, col := range g.children {
		edge[(col-g.parent)*r.boxWidth] = edgeTee
	}
	edge[0] = edgeStartRight
	if g.children[0] == g.parent {
		edge[0] = edgeStartUnder
	}
	edge[length] = edgeEnd
	return append(row, edge...)
}

// sweep walks rows in order and turns a blank into a vertical line wherever the previous
// row holds one of the continuing glyphs at the same position.
func sweep(rows [][]rune, continuing ...rune) {
	carries := make(map[rune]bool, len(continuing))
	for _, c := range continuing {
		carries[c] = true
	}
	for i := 1; i < len(rows); i++ {
		prev, row := rows[i-1], rows[i]
		for k, ch := range row {
			if ch == ' ' && carries[prev[k]] {
				row[k] = edgeVertical
			}
		}
	}
}
