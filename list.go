package animlist

import (
	"time"

	"github.com/gdamore/tcell/v3"
)

// AnimatedList displays a virtual list of items returned by a builder
// function and keeps it animated while the backing collection is mutated:
// removals dismiss and collapse, insertions grow a gap and reveal, changes
// rebuild in place and items can be reordered by dragging.
//
// The list is the rendering consumer of an Animator: it implements the
// measurement capability, drains the update queue once per draw and maps
// build slots to screen rows.
type AnimatedList struct {
	x, y, width, height int
	background          tcell.Style

	animator *Animator

	// Builder produces the item for an index and the current cursor.
	Builder ItemBuilder

	cursor      int
	wantsCursor bool
	changed     func(index int)

	// Index of the top build slot in the viewport and the rows of it
	// scrolled above, plus a pending scroll delta applied on the next
	// draw.
	top     int
	offset  int
	pending int

	lastWidth int

	pressed  bool
	pressY   int
	dragging bool
}

type drawnSlot struct {
	buildIndex int
	slot       Slot
	row        int
	height     int
}

// NewAnimatedList returns an animated list over a collection of the given
// initial length.
func NewAnimatedList(length int, builder ItemBuilder) *AnimatedList {
	l := &AnimatedList{
		Builder:    builder,
		background: tcell.StyleDefault,
		cursor:     -1,
		lastWidth:  80,
	}
	l.animator = NewAnimator(length, func(index int) Element {
		if l.Builder == nil {
			return nil
		}
		if item := l.Builder(index, l.cursor); item != nil {
			return item
		}
		return nil
	}).SetMeasurer(l)
	return l
}

// Animator returns the engine driving the list, for notify calls, batching
// and configuration.
func (l *AnimatedList) Animator() *Animator {
	return l.animator
}

// SetRect sets the list's screen rectangle.
func (l *AnimatedList) SetRect(x, y, width, height int) *AnimatedList {
	l.x, l.y, l.width, l.height = x, y, width, height
	return l
}

// GetRect returns the list's screen rectangle.
func (l *AnimatedList) GetRect() (int, int, int, int) {
	return l.x, l.y, l.width, l.height
}

// SetBackgroundStyle sets the style used to clear the list's rectangle.
func (l *AnimatedList) SetBackgroundStyle(style tcell.Style) *AnimatedList {
	l.background = style
	return l
}

// SetChangedFunc sets a handler that is called when the cursor changes.
func (l *AnimatedList) SetChangedFunc(handler func(index int)) *AnimatedList {
	l.changed = handler
	return l
}

// Cursor returns the current cursor index.
func (l *AnimatedList) Cursor() int {
	return l.cursor
}

// SetCursor sets the currently selected item index and scrolls it into view
// on the next draw.
func (l *AnimatedList) SetCursor(index int) *AnimatedList {
	if index < -1 {
		index = -1
	}
	if index >= l.animator.ItemCount() {
		index = l.animator.ItemCount() - 1
	}
	if l.cursor != index {
		l.cursor = index
		l.wantsCursor = index >= 0
		if l.changed != nil {
			l.changed(l.cursor)
		}
	}
	return l
}

// ScrollToStart resets the scroll position to the top.
func (l *AnimatedList) ScrollToStart() *AnimatedList {
	l.top, l.offset, l.pending = 0, 0, 0
	return l
}

// NotifyInserted records an insertion and keeps the cursor on its item.
func (l *AnimatedList) NotifyInserted(from, count, priority int) *AnimatedList {
	l.animator.NotifyInserted(from, count, priority)
	if l.cursor >= from {
		l.cursor += count
	}
	return l
}

// NotifyRemoved records a removal and keeps the cursor on its item, or moves
// it to the nearest survivor.
func (l *AnimatedList) NotifyRemoved(from, count int, builder OffListBuilder, priority int) *AnimatedList {
	l.animator.NotifyRemoved(from, count, builder, priority)
	switch {
	case l.cursor >= from+count:
		l.cursor -= count
	case l.cursor >= from:
		l.cursor = min(from, l.animator.ItemCount()-1)
	}
	return l
}

// NotifyReplaced records a replacement and remaps the cursor across it.
func (l *AnimatedList) NotifyReplaced(from, removeCount, insertCount int, builder OffListBuilder, priority int) *AnimatedList {
	l.animator.NotifyReplaced(from, removeCount, insertCount, builder, priority)
	if l.cursor >= from+removeCount {
		l.cursor += insertCount - removeCount
	} else if l.cursor >= from {
		l.cursor = min(from, l.animator.ItemCount()-1)
	}
	return l
}

// NotifyChanged records an in-place content change.
func (l *AnimatedList) NotifyChanged(from, count int, builder OffListBuilder, priority int) *AnimatedList {
	l.animator.NotifyChanged(from, count, builder, priority)
	return l
}

// Step advances the list's animations to now and reports whether another
// frame is needed.
func (l *AnimatedList) Step(now time.Time) bool {
	return l.animator.Tick(now)
}

// Animating reports whether any animation is still advancing.
func (l *AnimatedList) Animating() bool {
	return l.animator.Animating()
}

// MeasureItems implements Measurer by summing item heights at the current
// width. Measurement completes synchronously.
func (l *AnimatedList) MeasureItems(token *CancelToken, count int, build func(index int) Element, done func(extent float64)) {
	if token.Cancelled() {
		return
	}
	total := 0
	for i := range count {
		if item := asItem(build(i)); item != nil {
			total += max(item.Height(l.lastWidth), 1)
		} else {
			total++
		}
	}
	done(float64(total))
}

// Draw draws the list onto the screen.
func (l *AnimatedList) Draw(screen tcell.Screen) {
	x, y, width, height := l.x, l.y, l.width, l.height
	if width <= 0 || height <= 0 {
		return
	}
	l.lastWidth = width
	l.applyUpdates()

	for row := range height {
		for col := range width {
			screen.SetContent(x+col, y+row, ' ', nil, l.background)
		}
	}

rebuild:
	children := make([]drawnSlot, 0, 16)

	// Apply the pending scroll, pulling previous slots in when scrolling
	// upward.
	ah := -(l.offset + l.pending)
	l.pending = 0
	for ah > 0 && l.top > 0 {
		l.top--
		ah -= l.slotHeight(l.animator.BuildSlot(l.top), width)
	}
	if ah > 0 {
		ah = 0
	}

	row := ah
	for buildIndex := l.top; row < height; buildIndex++ {
		slot := l.animator.BuildSlot(buildIndex)
		if slot.Kind == SlotNone {
			break
		}
		slotHeight := l.slotHeight(slot, width)
		children = append(children, drawnSlot{buildIndex: buildIndex, slot: slot, row: row, height: slotHeight})
		row += slotHeight
	}

	// Restart from the cursor slot when it didn't make it into view.
	if l.wantsCursor && l.cursor >= 0 {
		l.wantsCursor = false
		visible := false
		for _, child := range children {
			if child.slot.ItemIndex == l.cursor && child.row >= 0 && child.row+child.height <= height {
				visible = true
				break
			}
		}
		if !visible {
			if buildIndex := l.buildIndexOf(l.cursor); buildIndex >= 0 {
				l.top, l.offset = buildIndex, 0
				goto rebuild
			}
		}
	}

	// Re-anchor top/offset at the first slot reaching into the viewport.
	anchored := false
	for _, child := range children {
		if child.height > 0 && child.row+child.height > 0 {
			l.top, l.offset = child.buildIndex, -child.row
			anchored = true
			break
		}
	}
	if !anchored {
		l.top, l.offset = 0, 0
	}

	clipped := newClipScreen(screen, x, y, width, height)
	for _, child := range children {
		if child.height <= 0 || child.row+child.height <= 0 {
			continue
		}
		if item := asItem(child.slot.Element); item != nil {
			item.Draw(clipped, x, y+child.row, width, child.height)
		}
	}

	// The dragged item floats above the list at its tracked offset.
	if popUp := l.animator.PopUp(); popUp != nil {
		slot := popUp.BuildSlot(0)
		if item := asItem(slot.Element); item != nil {
			item.Draw(clipped, x, y+int(popUp.Offset()+0.5), width, max(item.Height(width), 1))
		}
	}
}

func (l *AnimatedList) slotHeight(slot Slot, width int) int {
	switch slot.Kind {
	case SlotNone:
		return 0
	case SlotSpacer:
		return int(slot.Extent + 0.5)
	default:
		if item := asItem(slot.Element); item != nil {
			return max(item.Height(width), 1)
		}
		return 1
	}
}

// applyUpdates drains the engine's update queue and remaps the scroll anchor
// across the build index shifts.
func (l *AnimatedList) applyUpdates() {
	for _, u := range l.animator.DrainUpdates() {
		switch {
		case u.BuildIndex+u.OldBuildCount <= l.top:
			l.top += u.NewBuildCount - u.OldBuildCount
		case u.BuildIndex < l.top:
			l.top = u.BuildIndex
			if u.Flags&UpdateKeepOffset == 0 {
				l.offset = 0
			}
		}
	}
	if l.top < 0 {
		l.top = 0
	}
}

// buildIndexOf returns the build slot currently showing the given item, or
// -1.
func (l *AnimatedList) buildIndexOf(itemIndex int) int {
	for buildIndex := 0; ; buildIndex++ {
		slot := l.animator.BuildSlot(buildIndex)
		if slot.Kind == SlotNone {
			return -1
		}
		if slot.ItemIndex == itemIndex {
			return buildIndex
		}
	}
}

// HandleKey processes a key event. It returns whether the event was
// consumed.
func (l *AnimatedList) HandleKey(event *tcell.EventKey) bool {
	switch event.Key() {
	case tcell.KeyEscape:
		if l.animator.PopUp() != nil {
			l.dragging, l.pressed = false, false
			l.animator.StopReorder(true)
			return true
		}
	case tcell.KeyDown:
		l.SetCursor(l.cursor + 1)
		return true
	case tcell.KeyUp:
		if l.cursor > 0 {
			l.SetCursor(l.cursor - 1)
		}
		return true
	case tcell.KeyPgDn:
		l.pending += max(l.height, 1)
		return true
	case tcell.KeyPgUp:
		l.pending -= max(l.height, 1)
		return true
	}
	return false
}

// HandleMouse processes a mouse event: wheel scrolling, click to select and
// press-and-drag on an item to reorder it. It returns whether the event was
// consumed.
func (l *AnimatedList) HandleMouse(event *tcell.EventMouse) bool {
	x, y := event.Position()
	if !l.inRect(x, y) && !l.dragging {
		return false
	}
	buttons := event.Buttons()
	switch {
	case buttons&tcell.WheelUp != 0:
		l.pending -= 3
		return true
	case buttons&tcell.WheelDown != 0:
		l.pending += 3
		return true
	case buttons&tcell.Button1 != 0:
		if !l.pressed {
			l.pressed, l.pressY = true, y
			if index := l.itemIndexAt(y); index >= 0 {
				l.SetCursor(index)
			}
			return true
		}
		if !l.dragging && y != l.pressY && l.cursor >= 0 {
			if err := l.animator.StartReorder(l.cursor, y-l.y); err == nil {
				l.dragging = true
			}
		}
		if l.dragging {
			if popUp := l.animator.PopUp(); popUp != nil {
				popUp.SetOffset(float64(y - l.y))
			}
			l.animator.UpdateReorderDropIndex(l.insertionIndexAt(y))
		}
		return true
	default:
		if l.pressed {
			l.pressed = false
			if l.dragging {
				l.dragging = false
				l.animator.StopReorder(false)
			}
			return true
		}
	}
	return false
}

func (l *AnimatedList) inRect(x, y int) bool {
	return x >= l.x && x < l.x+l.width && y >= l.y && y < l.y+l.height
}

// itemIndexAt returns the collection index of the item under the given
// screen row, or -1.
func (l *AnimatedList) itemIndexAt(y int) int {
	target := y - l.y
	row := -l.offset
	for buildIndex := l.top; ; buildIndex++ {
		slot := l.animator.BuildSlot(buildIndex)
		if slot.Kind == SlotNone {
			return -1
		}
		slotHeight := l.slotHeight(slot, l.lastWidth)
		if target < row+slotHeight {
			return slot.ItemIndex
		}
		row += slotHeight
		if row > target+l.height {
			return -1
		}
	}
}

// insertionIndexAt returns the collection offset a drop at the given screen
// row points at.
func (l *AnimatedList) insertionIndexAt(y int) int {
	target := y - l.y
	row := -l.offset
	for buildIndex := l.top; ; buildIndex++ {
		slot := l.animator.BuildSlot(buildIndex)
		if slot.Kind == SlotNone {
			break
		}
		slotHeight := l.slotHeight(slot, l.lastWidth)
		if slot.ItemIndex >= 0 && target < row+slotHeight {
			if target < row+slotHeight/2 {
				return slot.ItemIndex
			}
			return slot.ItemIndex + 1
		}
		row += slotHeight
	}
	return l.animator.ItemCount()
}

func asItem(element Element) Item {
	item, _ := element.(Item)
	return item
}

// clipScreen restricts drawing to the list's rectangle.
type clipScreen struct {
	tcell.Screen
	x, y, width, height int
}

func newClipScreen(screen tcell.Screen, x, y, width, height int) *clipScreen {
	return &clipScreen{Screen: screen, x: x, y: y, width: width, height: height}
}

func (s *clipScreen) inBounds(x, y int) bool {
	return x >= s.x && x < s.x+s.width && y >= s.y && y < s.y+s.height
}

func (s *clipScreen) SetContent(x, y int, primary rune, combining []rune, style tcell.Style) {
	if !s.inBounds(x, y) {
		return
	}
	s.Screen.SetContent(x, y, primary, combining, style)
}

func (s *clipScreen) Put(x, y int, str string, style tcell.Style) (string, int) {
	if !s.inBounds(x, y) {
		return str, 0
	}
	return s.Screen.Put(x, y, str, style)
}
