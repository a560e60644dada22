package animlist

// Element is whatever a builder produces for one visual slot. The engine
// never inspects elements; it only hands them back out through BuildSlot.
type Element any

// Builder produces the element for a live collection item.
type Builder func(index int) Element

// OffListBuilder produces elements for items that are no longer part of the
// collection but are still on screen, animating out. Indices are local to the
// off-list run the builder was captured for.
type OffListBuilder func(index int) Element

// SlotKind classifies what a build slot currently shows.
type SlotKind int

const (
	// SlotNone marks an out-of-range build index.
	SlotNone SlotKind = iota

	// SlotItem is a settled element.
	SlotItem

	// SlotAppearing is an element animating in; Value runs 0 to 1.
	SlotAppearing

	// SlotDisappearing is an off-list element animating out; Value runs
	// 1 to 0.
	SlotDisappearing

	// SlotChanging is an element rebuilt in place, cross-fading from its
	// old appearance; Value runs 0 to 1.
	SlotChanging

	// SlotSpacer is an animated empty gap; Extent holds its current size.
	SlotSpacer
)

// Slot describes one build slot of the list.
type Slot struct {
	Kind    SlotKind
	Element Element

	// ItemIndex is the collection index behind the slot, or -1 for
	// spacers and off-list elements.
	ItemIndex int

	// Extent is the spacer's current size, in the consumer's layout unit.
	Extent float64

	// Value is the progress of the slot's animation, if any.
	Value float64
}

// interval is one contiguous run of the collection together with its
// animation state. Intervals are immutable across state changes: a transition
// always replaces the interval with a new one of a different variant, seeding
// any still-running animation value as the new starting point.
//
// The variant set is closed; distribution (interval_list.go) and coordination
// (animator.go) switch over it exhaustively and panic on anything else.
type interval interface {
	// buildCount is the number of visual slots the interval needs.
	buildCount() int

	// itemCount is the number of collection items the interval covers.
	// The sum over the main list always equals the collection length.
	itemCount() int

	// animation returns the handle driving the interval, or nil when it
	// is settled.
	animation() *Animation

	// dispose releases the interval's hold on its animation and cancels
	// any outstanding measurement.
	dispose()
}

// animated is embedded by variants that hold an animation handle.
type animated struct {
	anim *Animation
}

func (a *animated) animation() *Animation { return a.anim }

func (a *animated) dispose() { a.anim.detach() }

// normalInterval is a settled run of live items.
type normalInterval struct {
	length int
}

func (iv *normalInterval) buildCount() int       { return iv.length }
func (iv *normalInterval) itemCount() int        { return iv.length }
func (iv *normalInterval) animation() *Animation { return nil }
func (iv *normalInterval) dispose()              {}

// readyToRemoveInterval covers items that were removed from the collection
// but are still on screen, queued for a dismiss animation. When the removal
// came from a replace, toLength counts the incoming items hiding behind the
// run until it collapses.
type readyToRemoveInterval struct {
	priority int
	length   int
	builder  OffListBuilder
	toLength int
}

func (iv *readyToRemoveInterval) buildCount() int       { return iv.length }
func (iv *readyToRemoveInterval) itemCount() int        { return iv.toLength }
func (iv *readyToRemoveInterval) animation() *Animation { return nil }
func (iv *readyToRemoveInterval) dispose()              {}

// removingInterval animates removed items out.
type removingInterval struct {
	animated
	priority int
	length   int
	builder  OffListBuilder
	toLength int
}

func (iv *removingInterval) buildCount() int { return iv.length }
func (iv *removingInterval) itemCount() int  { return iv.toLength }

// readyToResizeInterval is a spacer queued for a size animation. It is
// created either fresh, by an insertion (fromSize zero and known), spawned
// from a stopped resize (fromSize seeded mid-flight), or by a completed
// removal (fromLength off-list items whose extent still has to be measured).
type readyToResizeInterval struct {
	priority int

	// toLength counts the collection items hidden behind the spacer.
	toLength int

	// fromLength and builder describe the dismissed items whose extent
	// seeds fromSize in the removal case.
	fromLength int
	builder    OffListBuilder

	fromSize  float64
	fromKnown bool
	toSize    float64
	toKnown   bool

	// token guards the outstanding asynchronous measurement, if any.
	token *CancelToken
}

func (iv *readyToResizeInterval) buildCount() int       { return 1 }
func (iv *readyToResizeInterval) itemCount() int        { return iv.toLength }
func (iv *readyToResizeInterval) animation() *Animation { return nil }

func (iv *readyToResizeInterval) dispose() {
	iv.token.Cancel()
}

// currentExtent is the spacer's size while it waits for promotion.
func (iv *readyToResizeInterval) currentExtent() float64 {
	if iv.fromKnown {
		return iv.fromSize
	}
	return 0
}

// resizingInterval animates a spacer between two measured sizes.
type resizingInterval struct {
	animated
	priority int
	toLength int
	fromSize float64
	toSize   float64
}

func (iv *resizingInterval) buildCount() int { return 1 }
func (iv *resizingInterval) itemCount() int  { return iv.toLength }

func (iv *resizingInterval) currentExtent() float64 {
	return iv.fromSize + (iv.toSize-iv.fromSize)*iv.anim.value
}

// readyToInsertInterval is a spacer settled at its final size, waiting for
// the go-ahead to reveal the items behind it.
type readyToInsertInterval struct {
	priority int
	length   int
	size     float64
}

func (iv *readyToInsertInterval) buildCount() int       { return 1 }
func (iv *readyToInsertInterval) itemCount() int        { return iv.length }
func (iv *readyToInsertInterval) animation() *Animation { return nil }
func (iv *readyToInsertInterval) dispose()              {}

// insertingInterval animates revealed items in. Splittable: a mutation inside
// the run splits it, both remainders staying on the shared handle.
type insertingInterval struct {
	animated
	length int
}

func (iv *insertingInterval) buildCount() int { return iv.length }
func (iv *insertingInterval) itemCount() int  { return iv.length }

// readyToChangeInterval covers items whose content changed, queued for an
// in-place rebuild. Until promotion the slots keep their old appearance,
// served by the captured builder.
type readyToChangeInterval struct {
	priority int
	length   int
	builder  OffListBuilder
}

func (iv *readyToChangeInterval) buildCount() int       { return iv.length }
func (iv *readyToChangeInterval) itemCount() int        { return iv.length }
func (iv *readyToChangeInterval) animation() *Animation { return nil }
func (iv *readyToChangeInterval) dispose()              {}

// changingInterval cross-fades rebuilt items. Splittable.
type changingInterval struct {
	animated
	length  int
	builder OffListBuilder
}

func (iv *changingInterval) buildCount() int { return iv.length }
func (iv *changingInterval) itemCount() int  { return iv.length }

// reorderHolderInterval is the dragged item's seat in the main list. The item
// renders in the pop-up list, so the holder needs no build slot, but it keeps
// covering its collection item so indexing stays intact while the drag is in
// progress.
type reorderHolderInterval struct {
	popUp *PopUpList
}

func (iv *reorderHolderInterval) buildCount() int       { return 0 }
func (iv *reorderHolderInterval) itemCount() int        { return 1 }
func (iv *reorderHolderInterval) animation() *Animation { return nil }
func (iv *reorderHolderInterval) dispose()              {}

// reorderOpeningInterval is the gap opening at the current drop candidate.
type reorderOpeningInterval struct {
	animated
	extent float64
}

func (iv *reorderOpeningInterval) buildCount() int { return 1 }
func (iv *reorderOpeningInterval) itemCount() int  { return 0 }

func (iv *reorderOpeningInterval) currentExtent() float64 {
	return iv.extent * iv.anim.value
}

// reorderClosingInterval is a gap closing after the drop candidate moved
// away; it disposes itself once shut.
type reorderClosingInterval struct {
	animated
	extent float64
}

func (iv *reorderClosingInterval) buildCount() int { return 1 }
func (iv *reorderClosingInterval) itemCount() int  { return 0 }

func (iv *reorderClosingInterval) currentExtent() float64 {
	return iv.extent * iv.anim.value
}

// moveDropInterval is a dropped item settling into its new slot.
type moveDropInterval struct {
	animated
}

func (iv *moveDropInterval) buildCount() int { return 1 }
func (iv *moveDropInterval) itemCount() int  { return 1 }

// popUpItemInterval is the single element of a pop-up list. Its indexing is
// decoupled from the main sequence; the pop-up resolves the dragged item's
// current collection index through its holder.
type popUpItemInterval struct {
	popUp *PopUpList
}

func (iv *popUpItemInterval) buildCount() int       { return 1 }
func (iv *popUpItemInterval) itemCount() int        { return 1 }
func (iv *popUpItemInterval) animation() *Animation { return nil }
func (iv *popUpItemInterval) dispose()              {}

// sliceBuilder narrows an off-list builder to a sub-range starting at from.
func sliceBuilder(builder OffListBuilder, from int) OffListBuilder {
	if builder == nil {
		return nil
	}
	if from == 0 {
		return builder
	}
	return func(index int) Element {
		return builder(index + from)
	}
}

// joinBuilders concatenates two off-list builders, the first one covering
// leftLength indices.
func joinBuilders(left, right OffListBuilder, leftLength int) OffListBuilder {
	return func(index int) Element {
		if index < leftLength {
			if left == nil {
				return nil
			}
			return left(index)
		}
		if right == nil {
			return nil
		}
		return right(index - leftLength)
	}
}
