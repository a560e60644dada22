package animlist

import (
	"errors"
	"fmt"
)

// ErrReorderActive is returned when a reorder is started while another one is
// still in progress. Drags are exclusive; there is no nesting.
var ErrReorderActive = errors.New("animlist: reorder already in progress")

// ErrItemUnsettled is returned when the item to pick up is still part of a
// running animation.
var ErrItemUnsettled = errors.New("animlist: item is animating and cannot be picked up")

// PopUpList is a side sequence holding at most one item temporarily detached
// from the main interval list while it is being dragged. Its indexing and
// scroll offset are decoupled from the main sequence.
type PopUpList struct {
	animator *Animator
	list     *intervalList

	// offset is the consumer-tracked scroll position of the floating
	// item, in the consumer's layout unit.
	offset float64

	// extent is the measured size of the dragged item, driving the
	// opening and closing gaps.
	extent float64

	holder  *intervalNode
	opening *intervalNode

	token *CancelToken
}

// BuildCount returns the number of build slots of the side list.
func (p *PopUpList) BuildCount() int {
	if p.list == nil {
		return 0
	}
	return p.list.buildCount()
}

// ItemCount returns the number of items held by the side list.
func (p *PopUpList) ItemCount() int {
	if p.list == nil {
		return 0
	}
	return p.list.itemCount()
}

// ItemIndex returns the dragged item's current collection index. Mutations
// elsewhere in the collection shift it like any other index.
func (p *PopUpList) ItemIndex() int {
	if p.holder == nil || p.holder.list == nil {
		return -1
	}
	return p.animator.list.itemOffset(p.holder)
}

// BuildSlot resolves a build index of the side list.
func (p *PopUpList) BuildSlot(buildIndex int) Slot {
	if buildIndex != 0 || p.list == nil || p.list.buildCount() == 0 {
		return Slot{ItemIndex: -1}
	}
	index := p.ItemIndex()
	if index < 0 {
		return Slot{ItemIndex: -1}
	}
	return Slot{Kind: SlotItem, Element: p.animator.buildItem(index), ItemIndex: index, Value: 1}
}

// Extent returns the measured size of the dragged item.
func (p *PopUpList) Extent() float64 {
	return p.extent
}

// Offset returns the floating item's tracked position.
func (p *PopUpList) Offset() float64 {
	return p.offset
}

// SetOffset moves the floating item; the consumer calls this as the pointer
// moves.
func (p *PopUpList) SetOffset(offset float64) {
	p.offset = offset
}

func (p *PopUpList) dispose() {
	p.token.Cancel()
	if p.list != nil {
		p.list.dispose()
		p.list = nil
	}
	p.holder, p.opening = nil, nil
}

// StartReorder detaches the item at itemIndex into a pop-up list and opens a
// gap at the vacated point. initialSlot seeds the pop-up's offset tracking,
// typically the item's current layout position. The item must sit in a
// settled run.
func (a *Animator) StartReorder(itemIndex, initialSlot int) error {
	if a.popUp != nil {
		return ErrReorderActive
	}
	if itemIndex < 0 || itemIndex >= a.length {
		panic(fmt.Sprintf("animlist: reorder index out of range: %d length=%d", itemIndex, a.length))
	}
	a.ensureList()

	node, leading := a.findItem(itemIndex)
	iv, ok := node.iv.(*normalInterval)
	if !ok {
		return ErrItemUnsettled
	}

	popUp := &PopUpList{
		animator: a,
		list:     &intervalList{},
		offset:   float64(initialSlot),
	}
	popUp.list.appendInterval(&popUpItemInterval{popUp: popUp})

	// The gap starts settled open: the item occupied this space an
	// instant ago.
	anim := newAnimation(a, 1)
	opening := &reorderOpeningInterval{animated: animated{anim.attach()}}

	pieces := make([]interval, 0, 4)
	if leading > 0 {
		pieces = append(pieces, &normalInterval{length: leading})
	}
	holderAt := len(pieces)
	pieces = append(pieces, &reorderHolderInterval{popUp: popUp})
	pieces = append(pieces, opening)
	if trailing := iv.length - leading - 1; trailing > 0 {
		pieces = append(pieces, &normalInterval{length: trailing})
	}
	nodes := a.list.replaceNode(node, pieces...)
	popUp.holder = nodes[holderAt]
	popUp.opening = nodes[holderAt+1]
	a.popUp = popUp

	a.pushUpdate(Update{
		BuildIndex:    a.list.buildOffset(popUp.opening),
		OldBuildCount: 1,
		NewBuildCount: 1,
		Flags:         UpdatePopUpPick | UpdateKeepOffset,
		PopUp:         popUp,
	})

	a.measurePickedItem(popUp, opening, itemIndex)
	a.maybeCoordinate()
	return nil
}

// measurePickedItem fills in the dragged item's extent so the opening and
// closing gaps know their full size.
func (a *Animator) measurePickedItem(popUp *PopUpList, opening *reorderOpeningInterval, itemIndex int) {
	if a.measurer == nil {
		return
	}
	token := &CancelToken{}
	popUp.token = token
	a.measurer.MeasureItems(token, 1, func(int) Element {
		return a.buildItem(itemIndex)
	}, func(extent float64) {
		if token.Cancelled() {
			return
		}
		popUp.extent = extent
		opening.extent = extent
	})
}

// UpdateReorderDropIndex relocates the drop gap: the current one closes and a
// new one opens at the candidate point, given as a collection offset in
// [0, length]. A no-op without an active reorder or when the candidate did
// not change.
func (a *Animator) UpdateReorderDropIndex(dropIndex int) {
	popUp := a.popUp
	if popUp == nil {
		return
	}
	dropIndex = min(max(dropIndex, 0), a.length)
	if popUp.opening != nil && a.list.itemOffset(popUp.opening) == dropIndex {
		return
	}

	a.closeGap(popUp)

	node, leading := a.findInsertion(dropIndex)
	anim := newAnimation(a, 0)
	anim.startTo(1, a.reorderDuration)
	opening := &reorderOpeningInterval{animated: animated{anim.attach()}, extent: popUp.extent}

	var openingNode *intervalNode
	if node != nil && leading > 0 {
		iv := node.iv.(*normalInterval)
		nodes := a.list.replaceNode(node,
			&normalInterval{length: leading},
			opening,
			&normalInterval{length: iv.length - leading},
		)
		openingNode = nodes[1]
	} else {
		openingNode = a.list.insertBefore(node, opening)
	}
	popUp.opening = openingNode
	a.pushUpdate(Update{
		BuildIndex:    a.list.buildOffset(openingNode),
		OldBuildCount: 0,
		NewBuildCount: 1,
		Flags:         UpdateKeepOffset,
	})
	a.maybeCoordinate()
}

// StopReorder ends the drag: commit animates the item into the drop gap and
// reports the move; cancel routes it back to where it came from. A no-op
// without an active reorder.
func (a *Animator) StopReorder(cancel bool) {
	popUp := a.popUp
	if popUp == nil {
		return
	}

	from := a.list.itemOffset(popUp.holder)
	to := from
	if popUp.opening != nil {
		to = a.list.itemOffset(popUp.opening)
		if from < to {
			to--
		}
	}
	if cancel {
		to = from
	}

	anim := newAnimation(a, 0)
	anim.startTo(1, a.reorderDuration)
	drop := &moveDropInterval{animated: animated{anim.attach()}}

	if to == from && popUp.opening != nil && popUp.opening.prev == popUp.holder {
		// Dropping right back where it was picked up: the gap becomes
		// the landing slot.
		a.list.removeNode(popUp.holder)
		bi := a.list.buildOffset(popUp.opening)
		a.list.replaceNode(popUp.opening, drop)
		a.pushUpdate(Update{BuildIndex: bi, OldBuildCount: 1, NewBuildCount: 1, Flags: UpdatePopUpDrop | UpdateKeepOffset, PopUp: popUp})
	} else if !cancel && popUp.opening != nil {
		if a.moveFunc != nil && from != to {
			a.moveFunc(from, to)
		}
		a.list.removeNode(popUp.holder)
		bi := a.list.buildOffset(popUp.opening)
		a.list.replaceNode(popUp.opening, drop)
		a.pushUpdate(Update{BuildIndex: bi, OldBuildCount: 1, NewBuildCount: 1, Flags: UpdatePopUpDrop | UpdateKeepOffset, PopUp: popUp})
	} else {
		// Cancel with the gap elsewhere: close it and land the item on
		// its original seat.
		a.closeGap(popUp)
		bi := a.list.buildOffset(popUp.holder)
		a.list.replaceNode(popUp.holder, drop)
		a.pushUpdate(Update{BuildIndex: bi, OldBuildCount: 0, NewBuildCount: 1, Flags: UpdatePopUpDrop | UpdateKeepOffset, PopUp: popUp})
	}

	popUp.dispose()
	a.popUp = nil
	a.maybeCoordinate()
}

// closeGap turns the pop-up's current opening gap into a closing one,
// disposed once shut. A gap that never started opening is already shut and is
// removed on the spot; a closing animation from 0 to 0 would never tick.
func (a *Animator) closeGap(popUp *PopUpList) {
	node := popUp.opening
	if node == nil || node.list == nil {
		popUp.opening = nil
		return
	}
	iv := node.iv.(*reorderOpeningInterval)
	popUp.opening = nil
	if iv.anim.value == 0 {
		bi := a.list.buildOffset(node)
		a.list.removeNode(node)
		a.pushUpdate(Update{BuildIndex: bi, OldBuildCount: 1, NewBuildCount: 0})
		return
	}
	anim := newAnimation(a, iv.anim.value)
	anim.startTo(0, a.reorderDuration)
	a.list.replaceNode(node, &reorderClosingInterval{
		animated: animated{anim.attach()},
		extent:   popUp.extent,
	})
}

// abortReorder tears an active drag down without a drop; the caller decides
// what happens to the holder's seat.
func (a *Animator) abortReorder(popUp *PopUpList) {
	if popUp == nil || popUp != a.popUp {
		return
	}
	a.closeGap(popUp)
	popUp.dispose()
	a.popUp = nil
}

// findItem returns the node covering the given collection index and the
// index's offset within it.
func (a *Animator) findItem(itemIndex int) (*intervalNode, int) {
	acc := 0
	for n := a.list.head; n != nil; n = n.next {
		count := n.iv.itemCount()
		if itemIndex < acc+count {
			return n, itemIndex - acc
		}
		acc += count
	}
	return nil, 0
}

// findInsertion locates where a gap at the given collection offset goes:
// either strictly inside a settled run (split it at leading) or in front of
// the returned node (nil appends at the end).
func (a *Animator) findInsertion(offset int) (*intervalNode, int) {
	acc := 0
	for n := a.list.head; n != nil; n = n.next {
		count := n.iv.itemCount()
		if acc == offset {
			return n, 0
		}
		if offset < acc+count {
			if _, ok := n.iv.(*normalInterval); ok {
				return n, offset - acc
			}
			return n, 0
		}
		acc += count
	}
	return nil, 0
}
