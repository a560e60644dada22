package animlist

import (
	"strings"

	"github.com/gdamore/tcell/v3"
	"github.com/rivo/uniseg"
)

// Item represents a list entry which can be measured for a given width.
//
// Items are responsible for reporting their own height so the list can lay
// out and scroll variable-height entries.
type Item interface {
	// Height returns the number of rows the item needs at the given width.
	Height(width int) int

	// Draw renders the item into the given rectangle. Rows beyond height
	// are clipped by the list.
	Draw(screen tcell.Screen, x, y, width, height int)
}

// ItemBuilder returns the item for the given index and cursor position. It
// must return nil when the index is out of range.
type ItemBuilder func(index int, cursor int) Item

// TextItem is a ready-made item rendering wrapped styled text.
type TextItem struct {
	text  string
	style tcell.Style
}

// NewTextItem returns a text item with the default style.
func NewTextItem(text string) *TextItem {
	return &TextItem{text: text, style: tcell.StyleDefault}
}

// SetStyle sets the item's text style.
func (t *TextItem) SetStyle(style tcell.Style) *TextItem {
	t.style = style
	return t
}

// Text returns the item's text.
func (t *TextItem) Text() string {
	return t.text
}

// Height returns the number of rows the wrapped text needs.
func (t *TextItem) Height(width int) int {
	return max(len(t.wrap(width)), 1)
}

// Draw renders the wrapped text.
func (t *TextItem) Draw(screen tcell.Screen, x, y, width, height int) {
	for row, line := range t.wrap(width) {
		if row >= height {
			break
		}
		col := x
		gr := uniseg.NewGraphemes(line)
		for gr.Next() {
			cluster := gr.Str()
			clusterWidth := max(uniseg.StringWidth(cluster), 1)
			if col+clusterWidth > x+width {
				break
			}
			screen.Put(col, y+row, cluster, t.style)
			col += clusterWidth
		}
	}
}

// wrap splits the text into lines no wider than width, breaking on grapheme
// cluster boundaries.
func (t *TextItem) wrap(width int) []string {
	var lines []string
	for _, hard := range strings.Split(t.text, "\n") {
		if width <= 0 {
			lines = append(lines, hard)
			continue
		}
		var line strings.Builder
		lineWidth := 0
		gr := uniseg.NewGraphemes(hard)
		for gr.Next() {
			cluster := gr.Str()
			clusterWidth := max(uniseg.StringWidth(cluster), 1)
			if lineWidth+clusterWidth > width && lineWidth > 0 {
				lines = append(lines, line.String())
				line.Reset()
				lineWidth = 0
			}
			line.WriteString(cluster)
			lineWidth += clusterWidth
		}
		lines = append(lines, line.String())
	}
	return lines
}
