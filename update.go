package animlist

// UpdateFlags qualify how the consumer must apply an update.
type UpdateFlags uint8

const (
	// UpdateDiscardElement tells the consumer to drop any cached element
	// state for the affected slots and rebuild them.
	UpdateDiscardElement UpdateFlags = 1 << iota

	// UpdateKeepOffset tells the consumer the change does not move
	// content, so any layout offset anchored at the affected slots should
	// be kept rather than cleared.
	UpdateKeepOffset

	// UpdatePopUpPick marks the update that detached an item into the
	// pop-up list.
	UpdatePopUpPick

	// UpdatePopUpDrop marks the update that returned the pop-up item to
	// the main sequence.
	UpdatePopUpDrop
)

// Update describes how build indices must be remapped after a structural
// change: at BuildIndex, OldBuildCount slots were replaced by NewBuildCount
// slots. The rendering consumer applies the queued updates once per rebuild
// pass, in order, then clears the queue.
type Update struct {
	BuildIndex    int
	OldBuildCount int
	NewBuildCount int
	Flags         UpdateFlags

	// PopUp references the side list involved in a pick or drop update.
	PopUp *PopUpList
}

func (a *Animator) pushUpdate(u Update) {
	a.updates = append(a.updates, u)
}

// DrainUpdates returns the queued updates and clears the queue.
func (a *Animator) DrainUpdates() []Update {
	updates := a.updates
	a.updates = nil
	return updates
}
