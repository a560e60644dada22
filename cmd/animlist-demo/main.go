// Demo of the animated list: a scrollable list of rows that can be grown,
// shrunk, edited and reordered while everything animates.
//
//	a  insert a row below the cursor
//	d  delete the row under the cursor
//	c  rewrite the row under the cursor
//	q  quit
//
// Drag a row with the mouse to reorder it; Escape cancels the drag.
package main

import (
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"github.com/ayn2op/animlist"
	"github.com/gdamore/tcell/v3"
)

var words = []string{
	"alpha", "bravo", "charlie", "delta", "echo", "foxtrot",
	"golf", "hotel", "india", "juliett", "kilo", "lima",
}

type demo struct {
	rows []string
	list *animlist.AnimatedList
}

func newDemo(count int) *demo {
	d := &demo{}
	for i := 0; i < count; i++ {
		d.rows = append(d.rows, d.randomRow())
	}
	d.list = animlist.NewAnimatedList(len(d.rows), func(index, cursor int) animlist.Item {
		if index < 0 || index >= len(d.rows) {
			return nil
		}
		style := tcell.StyleDefault
		if index == cursor {
			style = style.Reverse(true)
		}
		return animlist.NewTextItem(d.rows[index]).SetStyle(style)
	})
	d.list.Animator().SetMoveFunc(d.move)
	d.list.SetCursor(0)
	return d
}

func (d *demo) randomRow() string {
	return fmt.Sprintf("%s %s %d", words[rand.IntN(len(words))], words[rand.IntN(len(words))], rand.IntN(100))
}

func (d *demo) itemFor(text string) animlist.OffListBuilder {
	return func(int) animlist.Element {
		return animlist.NewTextItem(text)
	}
}

func (d *demo) insert(at int) {
	if at < 0 || at > len(d.rows) {
		at = len(d.rows)
	}
	d.rows = append(d.rows[:at], append([]string{d.randomRow()}, d.rows[at:]...)...)
	d.list.NotifyInserted(at, 1, 0)
}

func (d *demo) remove(at int) {
	if at < 0 || at >= len(d.rows) {
		return
	}
	removed := d.rows[at]
	d.rows = append(d.rows[:at:at], d.rows[at+1:]...)
	d.list.NotifyRemoved(at, 1, d.itemFor(removed), 0)
}

func (d *demo) change(at int) {
	if at < 0 || at >= len(d.rows) {
		return
	}
	old := d.rows[at]
	d.rows[at] = d.randomRow()
	d.list.NotifyChanged(at, 1, d.itemFor(old), 0)
}

func (d *demo) move(from, to int) {
	row := d.rows[from]
	d.rows = append(d.rows[:from:from], d.rows[from+1:]...)
	d.rows = append(d.rows[:to], append([]string{row}, d.rows[to:]...)...)
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()
	screen.EnableMouse()

	d := newDemo(8)
	width, height := screen.Size()
	d.list.SetRect(0, 0, width, height)

	events := screen.EventQ()
	ticker := time.NewTicker(time.Second / 60)
	defer ticker.Stop()

	for {
		select {
		case event := <-events:
			if event == nil {
				return nil
			}
			switch event := event.(type) {
			case *tcell.EventResize:
				width, height := screen.Size()
				d.list.SetRect(0, 0, width, height)
				screen.Sync()
			case *tcell.EventKey:
				switch event.Key() {
				case tcell.KeyCtrlC:
					return nil
				case tcell.KeyRune:
					switch event.Str() {
					case "q":
						return nil
					case "a":
						d.insert(d.list.Cursor() + 1)
					case "d":
						d.remove(d.list.Cursor())
					case "c":
						d.change(d.list.Cursor())
					}
				default:
					d.list.HandleKey(event)
				}
			case *tcell.EventMouse:
				d.list.HandleMouse(event)
			}
		case <-ticker.C:
			d.list.Step(time.Now())
		}

		d.list.Draw(screen)
		screen.Show()
	}
}
