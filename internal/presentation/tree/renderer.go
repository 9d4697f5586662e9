package tree

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/aretw0/pdasim/pkg/domain"
)

const (
	// DefaultCellHeight is the number of content rows per node.
	DefaultCellHeight = 3
	// DefaultCellWidth is the number of characters per content row.
	DefaultCellWidth = 20
)

// Box glyphs.
const (
	boxTopLeft     = '┌'
	boxTopRight    = '┐'
	boxBottomLeft  = '└'
	boxBottomRight = '┘'
	boxHorizontal  = '─'
	boxVertical    = '│'
	boxInlet       = '┴'
	boxOutlet      = '┬'
)

// Node is one box of a level: the configuration id and the labels shown inside it.
type Node struct {
	ID     int
	Fields []string
}

// Level maps a parent id to its children, in display order.
type Level map[int][]Node

// Slot is the column assigned to a node of the last rendered level.
type Slot struct {
	ID     int
	Column int
}

// InvariantError reports a level that references a parent the renderer never laid out.
// It is raised as a panic: the session that produced it is broken and must be reset.
type InvariantError struct {
	ParentID int
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("tree: parent %d has no column in the previous level", e.ParentID)
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithCellSize sets the number of content rows and the row width of every node.
// Non-positive values keep the defaults.
func WithCellSize(height, width int) Option {
	return func(r *Renderer) {
		if height > 0 {
			r.height = height
		}
		if width > 0 {
			r.width = width
		}
	}
}

// Renderer lays out an exploration tree one level at a time.
// The only state kept between calls is the column of each node of the previous level.
// A Renderer belongs to a single session and is not safe for concurrent use.
type Renderer struct {
	height int
	width  int

	left, right int
	boxTop      string
	boxBottom   string
	boxWidth    int

	slots []Slot
}

// NewRenderer creates a renderer whose first level hangs from the root slot.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{
		height: DefaultCellHeight,
		width:  DefaultCellWidth,
	}
	for _, opt := range opts {
		opt(r)
	}

	r.left = r.width >> 1
	r.right = r.width - 1 - r.left
	r.boxTop = box(boxTopLeft, boxInlet, boxTopRight, r.left, r.right)
	r.boxBottom = box(boxBottomLeft, boxOutlet, boxBottomRight, r.left, r.right)
	r.boxWidth = utf8.RuneCountInString(r.boxTop)
	r.Reset()
	return r
}

func box(open, mid, closing rune, left, right int) string {
	var sb strings.Builder
	sb.WriteRune(open)
	sb.WriteString(strings.Repeat(string(boxHorizontal), left))
	sb.WriteRune(mid)
	sb.WriteString(strings.Repeat(string(boxHorizontal), right))
	sb.WriteRune(closing)
	return sb.String()
}

// Reset forgets the layout, so the next level starts again at the root.
func (r *Renderer) Reset() {
	r.slots = []Slot{{ID: domain.RootParentID, Column: 0}}
}

// Columns returns the columns assigned to the last rendered level, left to right.
func (r *Renderer) Columns() []Slot {
	out := make([]Slot, len(r.slots))
	copy(out, r.slots)
	return out
}

// BoxWidth is the width in characters of one column.
func (r *Renderer) BoxWidth() int {
	return r.boxWidth
}

// Render lays out level below the previous one and returns the text slab for it:
// the connector band, the box tops, the content rows and the box bottoms.
// An empty level renders nothing and keeps the layout.
//
// Render panics with *InvariantError if level names a parent without a column.
func (r *Renderer) Render(level Level) string {
	if len(level) == 0 {
		return ""
	}
	known := make(map[int]bool, len(r.slots))
	for _, s := range r.slots {
		known[s.ID] = true
	}
	for parent := range level {
		if !known[parent] {
			panic(&InvariantError{ParentID: parent})
		}
	}

	var (
		top, bottom strings.Builder
		mid         = make([]strings.Builder, r.height)
		nextCol     int
		slots       []Slot
		groups      []edgeGroup
	)
	for _, parent := range r.slots {
		children := level[parent.ID]
		if len(children) == 0 {
			continue
		}
		group := edgeGroup{parent: parent.Column}
		for i, child := range children {
			col := max(parent.Column+i, nextCol)
			gap := strings.Repeat(" ", (col-nextCol)*r.boxWidth)
			nextCol = col + 1

			slots = append(slots, Slot{ID: child.ID, Column: col})
			group.children = append(group.children, col)

			top.WriteString(gap + r.boxTop)
			for j := range mid {
				field := ""
				if j < len(child.Fields) {
					field = child.Fields[j]
				}
				mid[j].WriteString(gap)
				mid[j].WriteRune(boxVertical)
				mid[j].WriteString(fit(field, r.width))
				mid[j].WriteRune(boxVertical)
			}
			bottom.WriteString(gap + r.boxBottom)
		}
		groups = append(groups, group)
	}
	r.slots = slots

	var sb strings.Builder
	sb.WriteString(r.connectors(groups))
	sb.WriteByte('\n')
	sb.WriteString(top.String())
	sb.WriteByte('\n')
	for j := range mid {
		if j > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(mid[j].String())
	}
	sb.WriteByte('\n')
	sb.WriteString(bottom.String())
	sb.WriteByte('\n')
	return sb.String()
}

// fit truncates or pads s to exactly width runes.
func fit(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n > width {
		return string([]rune(s)[:width])
	}
	return s + strings.Repeat(" ", width-n)
}

// LevelFromFrontier groups a frontier by parent and labels every node with its display fields.
func LevelFromFrontier(f *domain.Frontier) Level {
	level := make(Level)
	for _, g := range f.GroupByParent() {
		nodes := make([]Node, 0, len(g.Children))
		for _, c := range g.Children {
			nodes = append(nodes, Node{ID: c.ID, Fields: c.DisplayFields()})
		}
		level[g.ParentID] = nodes
	}
	return level
}
