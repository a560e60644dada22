package animlist

import (
	"fmt"
	"math"
	"time"
)

// CancelToken flags an asynchronous measurement whose owning interval went
// away while the measurement was in flight. A cancelled measurement is an
// expected race, not a failure: its result is discarded silently.
type CancelToken struct {
	cancelled bool
}

// Cancel marks the token. Safe on a nil token.
func (t *CancelToken) Cancel() {
	if t != nil {
		t.cancelled = true
	}
}

// Cancelled reports whether the token was cancelled.
func (t *CancelToken) Cancelled() bool {
	return t != nil && t.cancelled
}

// Measurer is the collaborator-provided capability to measure the total
// extent of count items produced by build. The implementation may complete
// synchronously or on a later frame; it must call done exactly once unless
// the token is cancelled first.
type Measurer interface {
	MeasureItems(token *CancelToken, count int, build func(index int) Element, done func(extent float64))
}

// MeasurerFunc adapts a function to the Measurer interface.
type MeasurerFunc func(token *CancelToken, count int, build func(index int) Element, done func(extent float64))

// MeasureItems calls f.
func (f MeasurerFunc) MeasureItems(token *CancelToken, count int, build func(index int) Element, done func(extent float64)) {
	f(token, count, build, done)
}

// Animator keeps a virtualized display of an ordered collection animated and
// consistent while the collection is mutated incrementally. It represents the
// whole collection as a run-length sequence of intervals, evolves the
// sequence as notify calls and animation completions arrive, and emits
// updates the rendering consumer applies once per rebuild.
//
// All methods must be called from the same goroutine that drives Tick;
// the engine is single-threaded and cooperative.
type Animator struct {
	length  int
	builder Builder

	measurer Measurer
	moveFunc func(from, to int)

	curve           Curve
	removeDuration  time.Duration
	resizeDuration  time.Duration
	insertDuration  time.Duration
	changeDuration  time.Duration
	reorderDuration time.Duration

	// list is created lazily on the first mutation.
	list  *intervalList
	popUp *PopUpList

	animations map[*Animation]struct{}
	updates    []Update

	batchDepth   int
	coordinating bool
	recoordinate bool
}

// NewAnimator returns an animator over a collection of the given initial
// length. The builder produces the element for a live item.
func NewAnimator(length int, builder Builder) *Animator {
	if length < 0 {
		panic(fmt.Sprintf("animlist: negative initial length %d", length))
	}
	return &Animator{
		length:          length,
		builder:         builder,
		curve:           CurveEaseInOut,
		removeDuration:  DefaultRemoveDuration,
		resizeDuration:  DefaultResizeDuration,
		insertDuration:  DefaultInsertDuration,
		changeDuration:  DefaultChangeDuration,
		reorderDuration: DefaultReorderDuration,
		animations:      make(map[*Animation]struct{}),
	}
}

// SetMeasurer sets the capability used to measure item extents for spacer
// animations. Without one, spacers settle instantly at size zero.
func (a *Animator) SetMeasurer(m Measurer) *Animator {
	a.measurer = m
	return a
}

// SetMoveFunc sets the handler invoked when a reorder drop commits. The
// handler must apply the move to the backing collection before returning.
func (a *Animator) SetMoveFunc(handler func(from, to int)) *Animator {
	a.moveFunc = handler
	return a
}

// SetCurve sets the curve used by animations started from now on.
func (a *Animator) SetCurve(curve Curve) *Animator {
	a.curve = curve
	return a
}

// SetDurations overrides the animation timings. Zero values keep the
// current setting.
func (a *Animator) SetDurations(remove, resize, insert, change, reorder time.Duration) *Animator {
	if remove > 0 {
		a.removeDuration = remove
	}
	if resize > 0 {
		a.resizeDuration = resize
	}
	if insert > 0 {
		a.insertDuration = insert
	}
	if change > 0 {
		a.changeDuration = change
	}
	if reorder > 0 {
		a.reorderDuration = reorder
	}
	return a
}

// ItemCount returns the tracked collection length.
func (a *Animator) ItemCount() int {
	return a.length
}

// BuildCount returns the number of build slots the list currently needs.
func (a *Animator) BuildCount() int {
	if a.list == nil {
		return a.length
	}
	return a.list.buildCount()
}

// PopUp returns the side list of an in-progress reorder, or nil.
func (a *Animator) PopUp() *PopUpList {
	return a.popUp
}

// Animating reports whether any animation is still advancing.
func (a *Animator) Animating() bool {
	for an := range a.animations {
		if an.running {
			return true
		}
	}
	return false
}

// Dispose tears the animator down, detaching all animations and cancelling
// outstanding measurements.
func (a *Animator) Dispose() {
	if a.popUp != nil {
		a.popUp.dispose()
		a.popUp = nil
	}
	if a.list != nil {
		a.list.dispose()
		a.list = nil
	}
	for an := range a.animations {
		delete(a.animations, an)
	}
	a.updates = nil
}

func (a *Animator) ensureList() {
	if a.list == nil {
		a.list = newIntervalList(a.length)
	}
}

func (a *Animator) buildItem(index int) Element {
	if a.builder == nil {
		return nil
	}
	return a.builder(index)
}

func (a *Animator) maybeCoordinate() {
	if a.batchDepth == 0 {
		a.coordinate()
	}
}

// Batch runs fn with coordination suppressed, then coordinates once. A group
// of notify calls inside fn is amortized over a single promotion pass;
// intermediate state is not externally observable.
func (a *Animator) Batch(fn func()) {
	a.batchDepth++
	defer func() {
		a.batchDepth--
		if a.batchDepth == 0 {
			a.coordinate()
		}
	}()
	fn()
}

// NotifyInserted records that count items were inserted into the collection
// at from. The collection must already hold the new items.
func (a *Animator) NotifyInserted(from, count, priority int) {
	if from < 0 || count < 0 || from > a.length {
		panic(fmt.Sprintf("animlist: insert out of range: from=%d count=%d length=%d", from, count, a.length))
	}
	if count == 0 {
		return
	}
	a.ensureList()
	a.length += count
	a.list.distribute(from, 0, count, func(d distribution) {
		a.applyInsert(d, count, priority)
	})
	a.maybeCoordinate()
}

// NotifyRemoved records that count items were removed from the collection at
// from. The builder must reproduce the removed items' appearance so they can
// animate out.
func (a *Animator) NotifyRemoved(from, count int, builder OffListBuilder, priority int) {
	if from < 0 || count < 0 || from+count > a.length {
		panic(fmt.Sprintf("animlist: remove out of range: from=%d count=%d length=%d", from, count, a.length))
	}
	if count == 0 {
		return
	}
	a.ensureList()
	a.length -= count
	removed := 0
	a.list.distribute(from, count, 0, func(d distribution) {
		a.applyRemove(d, sliceBuilder(builder, removed), priority)
		removed += d.removed
	})
	a.maybeCoordinate()
}

// NotifyReplaced records that removeCount items at from were replaced by
// insertCount new items.
func (a *Animator) NotifyReplaced(from, removeCount, insertCount int, builder OffListBuilder, priority int) {
	if from < 0 || removeCount < 0 || insertCount < 0 || from+removeCount > a.length {
		panic(fmt.Sprintf("animlist: replace out of range: from=%d remove=%d insert=%d length=%d",
			from, removeCount, insertCount, a.length))
	}
	if removeCount == 0 {
		a.NotifyInserted(from, insertCount, priority)
		return
	}
	a.ensureList()
	a.length += insertCount - removeCount
	removed := 0
	a.list.distribute(from, removeCount, insertCount, func(d distribution) {
		a.applyRemove(d, sliceBuilder(builder, removed), priority)
		removed += d.removed
	})
	a.maybeCoordinate()
}

// NotifyChanged records that count items at from changed their content in
// place. The builder must reproduce the old appearance for the cross-fade.
func (a *Animator) NotifyChanged(from, count int, builder OffListBuilder, priority int) {
	if from < 0 || count < 0 || from+count > a.length {
		panic(fmt.Sprintf("animlist: change out of range: from=%d count=%d length=%d", from, count, a.length))
	}
	if count == 0 {
		return
	}
	a.ensureList()
	changed := 0
	a.list.distribute(from, count, 0, func(d distribution) {
		a.applyChange(d, sliceBuilder(builder, changed), priority)
		changed += d.removed
	})
	a.maybeCoordinate()
}

func freshResize(priority, toLength int) *readyToResizeInterval {
	return &readyToResizeInterval{
		priority:  priority,
		toLength:  toLength,
		fromSize:  0,
		fromKnown: true,
	}
}

func (a *Animator) applyInsert(d distribution, count, priority int) {
	if d.node == nil {
		node := a.list.appendInterval(freshResize(priority, count))
		a.pushUpdate(Update{BuildIndex: a.list.buildOffset(node), OldBuildCount: 0, NewBuildCount: 1, Flags: UpdateKeepOffset})
		return
	}
	if d.before {
		node := a.list.insertBefore(d.node, freshResize(priority, count))
		a.pushUpdate(Update{BuildIndex: a.list.buildOffset(node), OldBuildCount: 0, NewBuildCount: 1, Flags: UpdateKeepOffset})
		return
	}

	switch iv := d.node.iv.(type) {
	case *normalInterval:
		a.splitWith(d, freshResize(priority, count), 0, 1, UpdateKeepOffset)

	case *insertingInterval, *changingInterval, *readyToChangeInterval:
		a.splitWith(d, freshResize(priority, count), 0, 1, UpdateKeepOffset)

	case *readyToResizeInterval:
		a.adjustResize(d.node, iv, iv.toLength+count, iv.currentExtent(), iv.fromKnown, priority)

	case *resizingInterval:
		iv.anim.stop()
		a.adjustResizing(d.node, iv, iv.toLength+count, priority)

	case *readyToInsertInterval:
		a.replaceWithResize(d.node, iv.length+count, iv.size, nil, 0, maxPriority(iv.priority, priority))

	case *readyToRemoveInterval:
		clone := *iv
		clone.toLength += count
		a.list.replaceNode(d.node, &clone)

	case *removingInterval:
		clone := &removingInterval{
			animated: animated{iv.anim.attach()},
			priority: iv.priority,
			length:   iv.length,
			builder:  iv.builder,
			toLength: iv.toLength + count,
		}
		a.list.replaceNode(d.node, clone)

	default:
		panic(fmt.Sprintf("animlist: insert not handled by interval %T", d.node.iv))
	}
}

func (a *Animator) applyRemove(d distribution, builder OffListBuilder, priority int) {
	switch iv := d.node.iv.(type) {
	case *normalInterval:
		middle := &readyToRemoveInterval{priority: priority, length: d.removed, builder: builder, toLength: d.inserted}
		a.splitWith(d, middle, d.removed, d.removed, UpdateDiscardElement|UpdateKeepOffset)

	case *insertingInterval, *changingInterval, *readyToChangeInterval:
		middle := &readyToRemoveInterval{priority: priority, length: d.removed, builder: builder, toLength: d.inserted}
		a.splitWith(d, middle, d.removed, d.removed, UpdateDiscardElement|UpdateKeepOffset)

	case *readyToResizeInterval:
		a.adjustResize(d.node, iv, iv.toLength-d.removed+d.inserted, iv.currentExtent(), iv.fromKnown, priority)

	case *resizingInterval:
		iv.anim.stop()
		a.adjustResizing(d.node, iv, iv.toLength-d.removed+d.inserted, priority)

	case *readyToInsertInterval:
		a.replaceWithResize(d.node, iv.length-d.removed+d.inserted, iv.size, nil, 0, maxPriority(iv.priority, priority))

	case *readyToRemoveInterval:
		clone := *iv
		clone.toLength += d.inserted - d.removed
		a.list.replaceNode(d.node, &clone)

	case *removingInterval:
		clone := &removingInterval{
			animated: animated{iv.anim.attach()},
			priority: iv.priority,
			length:   iv.length,
			builder:  iv.builder,
			toLength: iv.toLength - d.removed + d.inserted,
		}
		a.list.replaceNode(d.node, clone)

	case *reorderHolderInterval:
		// The dragged item itself was removed: the drag is over.
		a.abortReorder(iv.popUp)
		bi := a.list.buildOffset(d.node)
		middle := &readyToRemoveInterval{priority: priority, length: 1, builder: builder, toLength: d.inserted}
		a.list.replaceNode(d.node, middle)
		a.pushUpdate(Update{BuildIndex: bi, OldBuildCount: 0, NewBuildCount: 1, Flags: UpdateDiscardElement | UpdateKeepOffset})

	case *moveDropInterval:
		iv.anim.stop()
		bi := a.list.buildOffset(d.node)
		middle := &readyToRemoveInterval{priority: priority, length: 1, builder: builder, toLength: d.inserted}
		a.list.replaceNode(d.node, middle)
		a.pushUpdate(Update{BuildIndex: bi, OldBuildCount: 1, NewBuildCount: 1, Flags: UpdateDiscardElement | UpdateKeepOffset})

	default:
		panic(fmt.Sprintf("animlist: removal not handled by interval %T", d.node.iv))
	}
}

func (a *Animator) applyChange(d distribution, builder OffListBuilder, priority int) {
	switch iv := d.node.iv.(type) {
	case *normalInterval, *insertingInterval, *changingInterval, *readyToChangeInterval:
		middle := &readyToChangeInterval{priority: priority, length: d.removed, builder: builder}
		a.splitWith(d, middle, d.removed, d.removed, UpdateDiscardElement|UpdateKeepOffset)

	case *readyToResizeInterval, *resizingInterval, *readyToInsertInterval,
		*readyToRemoveInterval, *removingInterval:
		// The affected items are hidden behind a spacer or a dismissing
		// run; they will build fresh when revealed.

	case *reorderHolderInterval:
		// The dragged item rebuilds live in the pop-up on the next frame.

	case *moveDropInterval:
		iv.anim.stop()
		bi := a.list.buildOffset(d.node)
		a.list.replaceNode(d.node, &readyToChangeInterval{priority: priority, length: 1, builder: builder})
		a.pushUpdate(Update{BuildIndex: bi, OldBuildCount: 1, NewBuildCount: 1, Flags: UpdateDiscardElement | UpdateKeepOffset})

	default:
		panic(fmt.Sprintf("animlist: change not handled by interval %T", d.node.iv))
	}
}

// splitWith splits the distributed node at the intersection boundaries,
// placing middle between the unaffected remainders, and pushes an update for
// the middle's slots.
func (a *Animator) splitWith(d distribution, middle interval, oldBuild, newBuild int, flags UpdateFlags) {
	pieces := make([]interval, 0, 3)
	if left := a.remainder(d.node.iv, 0, d.leading); left != nil {
		pieces = append(pieces, left)
	}
	middleAt := len(pieces)
	pieces = append(pieces, middle)
	if right := a.remainder(d.node.iv, d.leading+d.removed, d.trailing); right != nil {
		pieces = append(pieces, right)
	}
	nodes := a.list.replaceNode(d.node, pieces...)
	a.pushUpdate(Update{
		BuildIndex:    a.list.buildOffset(nodes[middleAt]),
		OldBuildCount: oldBuild,
		NewBuildCount: newBuild,
		Flags:         flags,
	})
}

// remainder clones the unaffected part of a splittable interval, length items
// starting at the given local offset. A shared animation stays attached to
// every remainder.
func (a *Animator) remainder(iv interval, offset, length int) interval {
	if length <= 0 {
		return nil
	}
	switch iv := iv.(type) {
	case *normalInterval:
		return &normalInterval{length: length}
	case *insertingInterval:
		return &insertingInterval{animated: animated{iv.anim.attach()}, length: length}
	case *changingInterval:
		return &changingInterval{animated: animated{iv.anim.attach()}, length: length, builder: sliceBuilder(iv.builder, offset)}
	case *readyToChangeInterval:
		return &readyToChangeInterval{priority: iv.priority, length: length, builder: sliceBuilder(iv.builder, offset)}
	default:
		panic(fmt.Sprintf("animlist: interval %T is not splittable", iv))
	}
}

// adjustResize clones a ready-to-resize spacer with an adjusted covered-item
// count. The target size is stale, so any outstanding measurement dies with
// the old interval and the target is re-measured.
func (a *Animator) adjustResize(node *intervalNode, iv *readyToResizeInterval, toLength int, fromSize float64, fromKnown bool, priority int) {
	a.replaceWithResizeFrom(node, toLength, fromSize, fromKnown, iv.builder, iv.fromLength, maxPriority(iv.priority, priority))
}

func (a *Animator) adjustResizing(node *intervalNode, iv *resizingInterval, toLength, priority int) {
	// Seed the new spacer from the current mid-flight size so there is no
	// visual snap.
	a.replaceWithResize(node, toLength, iv.currentExtent(), nil, 0, maxPriority(iv.priority, priority))
}

func (a *Animator) replaceWithResize(node *intervalNode, toLength int, fromSize float64, builder OffListBuilder, fromLength, priority int) {
	a.replaceWithResizeFrom(node, toLength, fromSize, true, builder, fromLength, priority)
}

func (a *Animator) replaceWithResizeFrom(node *intervalNode, toLength int, fromSize float64, fromKnown bool, builder OffListBuilder, fromLength, priority int) {
	if toLength <= 0 && fromKnown && fromSize == 0 && fromLength == 0 {
		bi := a.list.buildOffset(node)
		a.list.removeNode(node)
		a.pushUpdate(Update{BuildIndex: bi, OldBuildCount: 1, NewBuildCount: 0})
		return
	}
	clone := &readyToResizeInterval{
		priority:   priority,
		toLength:   max(toLength, 0),
		fromLength: fromLength,
		builder:    builder,
		fromSize:   fromSize,
		fromKnown:  fromKnown,
	}
	if clone.toLength == 0 {
		clone.toSize, clone.toKnown = 0, true
	}
	a.list.replaceNode(node, clone)
}

func maxPriority(a, b int) int {
	return max(a, b)
}

// coordinate runs promotion passes until the sequence is quiescent. Nested
// triggers (a synchronous measurement completing mid-pass, an animation
// completed while iterating) set a flag and become further loop iterations
// instead of recursive re-entry.
func (a *Animator) coordinate() {
	if a.list == nil {
		return
	}
	if a.coordinating {
		a.recoordinate = true
		return
	}
	a.coordinating = true
	for {
		a.recoordinate = false
		a.coordinatePass()
		if !a.recoordinate {
			break
		}
	}
	a.coordinating = false
}

func (a *Animator) coordinatePass() {
	// Stage 1: dismiss. Every queued removal starts animating out; track
	// the highest priority among runs not yet fully dismissed.
	removalsActive := false
	maxRemovePriority := math.MinInt
	for _, n := range a.list.nodes() {
		switch iv := n.iv.(type) {
		case *readyToRemoveInterval:
			anim := newAnimation(a, 1)
			anim.startTo(0, a.removeDuration)
			nodes := a.list.replaceNode(n, &removingInterval{
				animated: animated{anim.attach()},
				priority: iv.priority,
				length:   iv.length,
				builder:  iv.builder,
				toLength: iv.toLength,
			})
			a.pushUpdate(Update{
				BuildIndex:    a.list.buildOffset(nodes[0]),
				OldBuildCount: iv.length,
				NewBuildCount: iv.length,
				Flags:         UpdateKeepOffset,
			})
			removalsActive = true
			maxRemovePriority = max(maxRemovePriority, iv.priority)
		case *removingInterval:
			removalsActive = true
			maxRemovePriority = max(maxRemovePriority, iv.priority)
		}
	}

	// Stage 2: in-place rebuilds, gated below the still-dismissing
	// priority ceiling.
	for _, n := range a.list.nodes() {
		iv, ok := n.iv.(*readyToChangeInterval)
		if !ok {
			continue
		}
		if removalsActive && iv.priority <= maxRemovePriority {
			continue
		}
		anim := newAnimation(a, 0)
		anim.startTo(1, a.changeDuration)
		nodes := a.list.replaceNode(n, &changingInterval{
			animated: animated{anim.attach()},
			length:   iv.length,
			builder:  iv.builder,
		})
		a.pushUpdate(Update{
			BuildIndex:    a.list.buildOffset(nodes[0]),
			OldBuildCount: iv.length,
			NewBuildCount: iv.length,
			Flags:         UpdateDiscardElement | UpdateKeepOffset,
		})
	}

	// Stage 3: spacer resizing. Measuring and growing only start once no
	// removal is still collapsing, so a spacer never races a
	// higher-priority dismissal into a layout jump.
	if !removalsActive {
		for _, n := range a.list.nodes() {
			if n.list == nil {
				continue
			}
			iv, ok := n.iv.(*readyToResizeInterval)
			if !ok {
				continue
			}
			a.promoteResize(n, iv)
		}
	}

	// Stage 4: reveal, once nothing is resizing or moving anymore.
	if !removalsActive && !a.resizeOrMoveActive() {
		for _, n := range a.list.nodes() {
			iv, ok := n.iv.(*readyToInsertInterval)
			if !ok {
				continue
			}
			anim := newAnimation(a, 0)
			anim.startTo(1, a.insertDuration)
			nodes := a.list.replaceNode(n, &insertingInterval{
				animated: animated{anim.attach()},
				length:   iv.length,
			})
			a.pushUpdate(Update{
				BuildIndex:    a.list.buildOffset(nodes[0]),
				OldBuildCount: 1,
				NewBuildCount: iv.length,
				Flags:         UpdateDiscardElement | UpdateKeepOffset,
			})
		}
	}

	// Stage 5: merge settled adjacent runs so the node count stays
	// bounded.
	a.mergePass()
}

// promoteResize moves a ready-to-resize spacer along: measure if unmeasured,
// then start the size animation, or skip it when it cannot change anything
// visible.
func (a *Animator) promoteResize(node *intervalNode, iv *readyToResizeInterval) {
	// With no other build slot on the list there is nothing a growing
	// spacer could keep from jumping; reveal immediately.
	if !a.otherBuildSlots(node) {
		if iv.toLength == 0 {
			bi := a.list.buildOffset(node)
			a.list.removeNode(node)
			a.pushUpdate(Update{BuildIndex: bi, OldBuildCount: 1, NewBuildCount: 0})
			return
		}
		size := 0.0
		if iv.toKnown {
			size = iv.toSize
		}
		a.list.replaceNode(node, &readyToInsertInterval{priority: iv.priority, length: iv.toLength, size: size})
		a.recoordinate = true
		return
	}

	if !iv.fromKnown && iv.fromLength == 0 {
		iv.fromSize, iv.fromKnown = 0, true
	}
	if !iv.toKnown && iv.toLength == 0 {
		iv.toSize, iv.toKnown = 0, true
	}
	if !iv.fromKnown || !iv.toKnown {
		a.startMeasure(node, iv)
		return
	}

	if iv.fromSize == iv.toSize {
		if iv.toLength == 0 {
			bi := a.list.buildOffset(node)
			a.list.removeNode(node)
			a.pushUpdate(Update{BuildIndex: bi, OldBuildCount: 1, NewBuildCount: 0})
			return
		}
		a.list.replaceNode(node, &readyToInsertInterval{priority: iv.priority, length: iv.toLength, size: iv.toSize})
		a.recoordinate = true
		return
	}

	anim := newAnimation(a, 0)
	anim.startTo(1, a.resizeDuration)
	a.list.replaceNode(node, &resizingInterval{
		animated: animated{anim.attach()},
		priority: iv.priority,
		toLength: iv.toLength,
		fromSize: iv.fromSize,
		toSize:   iv.toSize,
	})
}

// startMeasure kicks off the asynchronous measurements a spacer still needs:
// the extent of the dismissed items seeding its starting size, then the
// extent of the incoming items behind it. Completions re-enter coordination;
// a completion whose token was cancelled is discarded.
func (a *Animator) startMeasure(node *intervalNode, iv *readyToResizeInterval) {
	if iv.token != nil {
		return
	}
	if a.measurer == nil {
		if !iv.fromKnown {
			iv.fromSize, iv.fromKnown = 0, true
		}
		if !iv.toKnown {
			iv.toSize, iv.toKnown = 0, true
		}
		a.recoordinate = true
		return
	}

	token := &CancelToken{}
	iv.token = token

	finish := func() {
		if token.Cancelled() {
			return
		}
		iv.token = nil
		a.coordinate()
	}
	measureTo := func() {
		if token.Cancelled() {
			return
		}
		if iv.toKnown {
			finish()
			return
		}
		// The offset is resolved per build call: with an asynchronous
		// measurer, mutations elsewhere may shift the hidden items
		// before the measurement runs.
		a.measurer.MeasureItems(token, iv.toLength, func(i int) Element {
			return a.buildItem(a.list.itemOffset(node) + i)
		}, func(extent float64) {
			if token.Cancelled() {
				return
			}
			iv.toSize, iv.toKnown = extent, true
			finish()
		})
	}
	if iv.fromKnown {
		measureTo()
		return
	}
	builder := iv.builder
	a.measurer.MeasureItems(token, iv.fromLength, func(i int) Element {
		if builder == nil {
			return nil
		}
		return builder(i)
	}, func(extent float64) {
		if token.Cancelled() {
			return
		}
		iv.fromSize, iv.fromKnown = extent, true
		measureTo()
	})
}

// otherBuildSlots reports whether any interval besides node occupies build
// slots.
func (a *Animator) otherBuildSlots(node *intervalNode) bool {
	for n := a.list.head; n != nil; n = n.next {
		if n != node && n.iv.buildCount() > 0 {
			return true
		}
	}
	return false
}

// resizeOrMoveActive reports whether a spacer or a reorder gap is still in
// motion anywhere on the list.
func (a *Animator) resizeOrMoveActive() bool {
	for n := a.list.head; n != nil; n = n.next {
		switch iv := n.iv.(type) {
		case *resizingInterval, *reorderClosingInterval, *moveDropInterval:
			return true
		case *reorderOpeningInterval:
			if iv.anim.running {
				return true
			}
		}
	}
	return false
}

func (a *Animator) mergePass() {
	for n := a.list.head; n != nil; {
		if iv, ok := n.iv.(*normalInterval); ok && iv.length == 0 {
			next := n.next
			a.list.removeNode(n)
			n = next
			continue
		}
		m := n.next
		if m == nil {
			break
		}
		merged := mergeIntervals(n.iv, m.iv)
		if merged == nil {
			n = m
			continue
		}
		node := a.list.insertBefore(n, merged)
		a.list.removeNode(n)
		a.list.removeNode(m)
		n = node
	}
}

// mergeIntervals collapses two adjacent intervals of identical variant, equal
// priority and fully settled state into one. Merging never changes build
// counts, so no update is emitted.
func mergeIntervals(x, y interval) interval {
	switch x := x.(type) {
	case *normalInterval:
		if y, ok := y.(*normalInterval); ok {
			return &normalInterval{length: x.length + y.length}
		}
	case *readyToRemoveInterval:
		if y, ok := y.(*readyToRemoveInterval); ok && x.priority == y.priority {
			return &readyToRemoveInterval{
				priority: x.priority,
				length:   x.length + y.length,
				builder:  joinBuilders(x.builder, y.builder, x.length),
				toLength: x.toLength + y.toLength,
			}
		}
	}
	return nil
}

// Tick advances all animations to now, routes completions through the
// affected intervals and re-coordinates. It reports whether anything is
// still animating, so the caller can keep scheduling frames.
func (a *Animator) Tick(now time.Time) bool {
	var completed []*Animation
	for an := range a.animations {
		if an.tick(now) {
			completed = append(completed, an)
		}
	}
	if len(completed) > 0 {
		done := make(map[*Animation]bool, len(completed))
		for _, an := range completed {
			done[an] = true
		}
		a.advanceCompleted(done)
		a.coordinate()
	}
	return a.Animating()
}

// advanceCompleted asks every interval attached to a completed animation to
// move to its follow-up state. The node set is snapshotted first: advancing
// one interval must not disturb the iteration.
func (a *Animator) advanceCompleted(done map[*Animation]bool) {
	if a.list == nil {
		return
	}
	for _, n := range a.list.nodes() {
		if n.list == nil {
			continue
		}
		if an := n.iv.animation(); an == nil || !done[an] {
			continue
		}
		a.advance(n)
	}
}

func (a *Animator) advance(n *intervalNode) {
	switch iv := n.iv.(type) {
	case *removingInterval:
		bi := a.list.buildOffset(n)
		a.list.replaceNode(n, &readyToResizeInterval{
			priority:   iv.priority,
			toLength:   iv.toLength,
			fromLength: iv.length,
			builder:    iv.builder,
		})
		a.pushUpdate(Update{
			BuildIndex:    bi,
			OldBuildCount: iv.length,
			NewBuildCount: 1,
			Flags:         UpdateKeepOffset,
		})

	case *resizingInterval:
		if iv.toLength == 0 {
			bi := a.list.buildOffset(n)
			a.list.removeNode(n)
			a.pushUpdate(Update{BuildIndex: bi, OldBuildCount: 1, NewBuildCount: 0})
			return
		}
		a.list.replaceNode(n, &readyToInsertInterval{priority: iv.priority, length: iv.toLength, size: iv.toSize})

	case *insertingInterval:
		a.list.replaceNode(n, &normalInterval{length: iv.length})

	case *changingInterval:
		a.list.replaceNode(n, &normalInterval{length: iv.length})

	case *reorderClosingInterval:
		bi := a.list.buildOffset(n)
		a.list.removeNode(n)
		a.pushUpdate(Update{BuildIndex: bi, OldBuildCount: 1, NewBuildCount: 0})

	case *reorderOpeningInterval:
		// Settled open; it stays until the drag moves on or drops.

	case *moveDropInterval:
		a.list.replaceNode(n, &normalInterval{length: 1})
	}
}

// BuildSlot resolves a build index to what the slot currently shows. Out of
// range indices yield a SlotNone slot.
func (a *Animator) BuildSlot(buildIndex int) Slot {
	if buildIndex < 0 {
		return Slot{ItemIndex: -1}
	}
	if a.list == nil {
		if buildIndex >= a.length {
			return Slot{ItemIndex: -1}
		}
		return Slot{Kind: SlotItem, Element: a.buildItem(buildIndex), ItemIndex: buildIndex, Value: 1}
	}
	build, items := 0, 0
	for n := a.list.head; n != nil; n = n.next {
		bc := n.iv.buildCount()
		if buildIndex < build+bc {
			return a.slotFor(n.iv, buildIndex-build, items)
		}
		build += bc
		items += n.iv.itemCount()
	}
	return Slot{ItemIndex: -1}
}

func (a *Animator) slotFor(iv interval, local, itemOffset int) Slot {
	switch iv := iv.(type) {
	case *normalInterval:
		return Slot{Kind: SlotItem, Element: a.buildItem(itemOffset + local), ItemIndex: itemOffset + local, Value: 1}
	case *readyToRemoveInterval:
		return Slot{Kind: SlotItem, Element: offListElement(iv.builder, local), ItemIndex: -1, Value: 1}
	case *removingInterval:
		return Slot{Kind: SlotDisappearing, Element: offListElement(iv.builder, local), ItemIndex: -1, Value: iv.anim.value}
	case *readyToResizeInterval:
		return Slot{Kind: SlotSpacer, ItemIndex: -1, Extent: iv.currentExtent()}
	case *resizingInterval:
		return Slot{Kind: SlotSpacer, ItemIndex: -1, Extent: iv.currentExtent(), Value: iv.anim.value}
	case *readyToInsertInterval:
		return Slot{Kind: SlotSpacer, ItemIndex: -1, Extent: iv.size}
	case *insertingInterval:
		return Slot{Kind: SlotAppearing, Element: a.buildItem(itemOffset + local), ItemIndex: itemOffset + local, Value: iv.anim.value}
	case *readyToChangeInterval:
		return Slot{Kind: SlotItem, Element: offListElement(iv.builder, local), ItemIndex: itemOffset + local, Value: 1}
	case *changingInterval:
		return Slot{Kind: SlotChanging, Element: a.buildItem(itemOffset + local), ItemIndex: itemOffset + local, Value: iv.anim.value}
	case *reorderOpeningInterval:
		return Slot{Kind: SlotSpacer, ItemIndex: -1, Extent: iv.currentExtent(), Value: iv.anim.value}
	case *reorderClosingInterval:
		return Slot{Kind: SlotSpacer, ItemIndex: -1, Extent: iv.currentExtent(), Value: iv.anim.value}
	case *moveDropInterval:
		return Slot{Kind: SlotItem, Element: a.buildItem(itemOffset), ItemIndex: itemOffset, Value: iv.anim.value}
	default:
		panic(fmt.Sprintf("animlist: slot not handled by interval %T", iv))
	}
}

func offListElement(builder OffListBuilder, index int) Element {
	if builder == nil {
		return nil
	}
	return builder(index)
}
