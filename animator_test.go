package animlist

import (
	"fmt"
	"testing"
	"time"
)

func testBuilder(index int) Element {
	return fmt.Sprintf("item-%d", index)
}

func testOffBuilder(index int) Element {
	return fmt.Sprintf("gone-%d", index)
}

// unitMeasurer measures every item at the given extent, synchronously.
func unitMeasurer(extent float64) Measurer {
	return MeasurerFunc(func(token *CancelToken, count int, build func(index int) Element, done func(extent float64)) {
		if token.Cancelled() {
			return
		}
		done(extent * float64(count))
	})
}

// settle ticks the animator with a generous time step until everything has
// come to rest.
func settle(t *testing.T, a *Animator) {
	t.Helper()
	now := time.Unix(100, 0)
	for i := 0; i < 100; i++ {
		if !a.Tick(now) {
			return
		}
		now = now.Add(time.Second)
	}
	t.Fatal("animations never settled")
}

func slotKinds(a *Animator) []SlotKind {
	kinds := make([]SlotKind, a.BuildCount())
	for i := range kinds {
		kinds[i] = a.BuildSlot(i).Kind
	}
	return kinds
}

func TestAnimatorInsertIntoEmpty(t *testing.T) {
	a := NewAnimator(0, testBuilder)
	a.NotifyInserted(0, 3, 0)

	if got := a.ItemCount(); got != 3 {
		t.Errorf("ItemCount = %d, want 3", got)
	}
	if got := a.BuildCount(); got != 3 {
		t.Errorf("BuildCount = %d, want 3", got)
	}
	// With nothing else on screen there is no spacer to grow; the items
	// appear right away.
	for i, kind := range slotKinds(a) {
		if kind != SlotAppearing {
			t.Errorf("slot %d kind = %v, want SlotAppearing", i, kind)
		}
	}
	if !a.Animating() {
		t.Error("expected reveal animation to be running")
	}

	settle(t, a)
	for i, kind := range slotKinds(a) {
		if kind != SlotItem {
			t.Errorf("slot %d kind after settling = %v, want SlotItem", i, kind)
		}
	}
	if got := len(a.list.nodes()); got != 1 {
		t.Errorf("interval count after settling = %d, want 1", got)
	}
}

func TestAnimatorRemoveLifecycle(t *testing.T) {
	a := NewAnimator(10, testBuilder)
	a.NotifyRemoved(3, 2, testOffBuilder, 0)

	if got := a.ItemCount(); got != 8 {
		t.Errorf("ItemCount = %d, want 8", got)
	}
	// The dismissed items still occupy their build slots.
	if got := a.BuildCount(); got != 10 {
		t.Errorf("BuildCount = %d, want 10", got)
	}
	kinds := slotKinds(a)
	for i := 3; i < 5; i++ {
		if kinds[i] != SlotDisappearing {
			t.Errorf("slot %d kind = %v, want SlotDisappearing", i, kinds[i])
		}
	}
	if slot := a.BuildSlot(3); slot.Element != "gone-0" {
		t.Errorf("dismissed slot element = %v, want gone-0", slot.Element)
	}
	if slot := a.BuildSlot(5); slot.ItemIndex != 3 {
		t.Errorf("item index after dismissed run = %d, want 3", slot.ItemIndex)
	}

	settle(t, a)
	if got := a.BuildCount(); got != 8 {
		t.Errorf("BuildCount after settling = %d, want 8", got)
	}
	if got := len(a.list.nodes()); got != 1 {
		t.Errorf("interval count after settling = %d, want 1", got)
	}
}

func TestAnimatorRemoveCollapsesThroughSpacer(t *testing.T) {
	a := NewAnimator(10, testBuilder).SetMeasurer(unitMeasurer(2))
	a.NotifyRemoved(3, 2, testOffBuilder, 0)

	t0 := time.Unix(100, 0)
	a.Tick(t0)
	a.Tick(t0.Add(time.Second))

	// The dismiss finished; a spacer seeded at the dismissed extent is now
	// collapsing.
	if got := a.BuildCount(); got != 9 {
		t.Fatalf("BuildCount during collapse = %d, want 9", got)
	}
	slot := a.BuildSlot(3)
	if slot.Kind != SlotSpacer {
		t.Fatalf("slot 3 kind = %v, want SlotSpacer", slot.Kind)
	}
	if slot.Extent != 4 {
		t.Errorf("spacer extent = %v, want 4", slot.Extent)
	}

	settle(t, a)
	if got := a.BuildCount(); got != 8 {
		t.Errorf("BuildCount after settling = %d, want 8", got)
	}
}

func TestAnimatorReplaceRevealsAfterCollapse(t *testing.T) {
	a := NewAnimator(10, testBuilder).SetMeasurer(unitMeasurer(1))
	a.NotifyReplaced(3, 2, 3, testOffBuilder, 0)

	if got := a.ItemCount(); got != 11 {
		t.Errorf("ItemCount = %d, want 11", got)
	}
	// The incoming items hide behind the dismissing run until it collapses.
	if got := a.BuildCount(); got != 10 {
		t.Errorf("BuildCount = %d, want 10", got)
	}
	if slot := a.BuildSlot(5); slot.ItemIndex != 6 {
		t.Errorf("item index after replaced run = %d, want 6", slot.ItemIndex)
	}

	settle(t, a)
	if got := a.BuildCount(); got != 11 {
		t.Errorf("BuildCount after settling = %d, want 11", got)
	}
	for i, kind := range slotKinds(a) {
		if kind != SlotItem {
			t.Errorf("slot %d kind after settling = %v, want SlotItem", i, kind)
		}
	}
}

func TestAnimatorChangeCrossFades(t *testing.T) {
	a := NewAnimator(5, testBuilder)
	a.NotifyChanged(2, 2, testOffBuilder, 0)

	kinds := slotKinds(a)
	for i := 2; i < 4; i++ {
		if kinds[i] != SlotChanging {
			t.Errorf("slot %d kind = %v, want SlotChanging", i, kinds[i])
		}
	}
	// Changing slots build the new content; Value drives the cross-fade.
	if slot := a.BuildSlot(2); slot.Element != "item-2" {
		t.Errorf("changing slot element = %v, want item-2", slot.Element)
	}

	settle(t, a)
	if got := len(a.list.nodes()); got != 1 {
		t.Errorf("interval count after settling = %d, want 1", got)
	}
}

func TestAnimatorPriorityGatesChanges(t *testing.T) {
	a := NewAnimator(10, testBuilder)
	a.Batch(func() {
		a.NotifyRemoved(0, 2, testOffBuilder, 5)
		a.NotifyChanged(4, 2, testOffBuilder, 1)
	})

	// The change waits below the dismissal's priority, serving the old
	// appearance meanwhile.
	slot := a.BuildSlot(6)
	if slot.Kind != SlotItem {
		t.Fatalf("gated change slot kind = %v, want SlotItem", slot.Kind)
	}
	if slot.Element != "gone-0" {
		t.Errorf("gated change slot element = %v, want gone-0", slot.Element)
	}

	// A change outranking the dismissal starts right away.
	a.NotifyChanged(7, 1, testOffBuilder, 9)
	if got := a.BuildSlot(9).Kind; got != SlotChanging {
		t.Errorf("outranking change slot kind = %v, want SlotChanging", got)
	}

	// Once the dismissal finishes, the gated change follows.
	t0 := time.Unix(100, 0)
	a.Tick(t0)
	a.Tick(t0.Add(time.Second))
	if got := a.BuildSlot(4).Kind; got != SlotChanging {
		t.Errorf("slot kind after dismissal = %v, want SlotChanging", got)
	}

	settle(t, a)
}

func TestAnimatorBatchRoundTrip(t *testing.T) {
	a := NewAnimator(5, testBuilder)
	a.Batch(func() {
		a.NotifyInserted(2, 3, 0)
		a.NotifyRemoved(2, 3, testOffBuilder, 0)
	})

	if got := a.ItemCount(); got != 5 {
		t.Errorf("ItemCount = %d, want 5", got)
	}
	if got := a.BuildCount(); got != 5 {
		t.Errorf("BuildCount = %d, want 5", got)
	}
	if a.Animating() {
		t.Error("round trip should settle without animations")
	}
	if got := len(a.list.nodes()); got != 1 {
		t.Errorf("interval count = %d, want 1", got)
	}
}

func TestAnimatorUpdatesTrackBuildCount(t *testing.T) {
	a := NewAnimator(10, testBuilder).SetMeasurer(unitMeasurer(1))

	tracked := a.BuildCount()
	apply := func() {
		for _, u := range a.DrainUpdates() {
			tracked += u.NewBuildCount - u.OldBuildCount
		}
		if tracked != a.BuildCount() {
			t.Fatalf("tracked build count %d diverged from %d", tracked, a.BuildCount())
		}
	}

	a.NotifyRemoved(3, 2, testOffBuilder, 0)
	apply()

	now := time.Unix(100, 0)
	for i := 0; i < 100; i++ {
		running := a.Tick(now)
		apply()
		if !running {
			break
		}
		now = now.Add(time.Second)
	}
	if tracked != 8 {
		t.Errorf("final tracked build count = %d, want 8", tracked)
	}
}

func TestAnimatorItemCountInvariant(t *testing.T) {
	a := NewAnimator(10, testBuilder).SetMeasurer(unitMeasurer(1))
	check := func(step string) {
		t.Helper()
		if a.list != nil && a.list.itemCount() != a.length {
			t.Fatalf("%s: interval item counts sum to %d, length is %d", step, a.list.itemCount(), a.length)
		}
	}

	a.NotifyRemoved(2, 3, testOffBuilder, 0)
	check("remove")
	a.NotifyInserted(4, 2, 1)
	check("insert")
	a.NotifyReplaced(0, 2, 4, testOffBuilder, 2)
	check("replace")
	a.NotifyChanged(3, 2, testOffBuilder, 0)
	check("change")

	now := time.Unix(100, 0)
	for i := 0; i < 100; i++ {
		running := a.Tick(now)
		check("tick")
		if !running {
			break
		}
		now = now.Add(time.Second)
	}
	if got := a.ItemCount(); got != 11 {
		t.Errorf("final ItemCount = %d, want 11", got)
	}
	if got := a.BuildCount(); got != 11 {
		t.Errorf("final BuildCount = %d, want 11", got)
	}
}

func TestAnimatorQuiescentTickEmitsNothing(t *testing.T) {
	a := NewAnimator(5, testBuilder)
	a.NotifyRemoved(1, 1, testOffBuilder, 0)
	settle(t, a)
	a.DrainUpdates()

	if a.Tick(time.Unix(200, 0)) {
		t.Error("Tick reported animations on a settled list")
	}
	if updates := a.DrainUpdates(); len(updates) != 0 {
		t.Errorf("settled tick emitted %d updates", len(updates))
	}
}

func TestAnimatorNotifyOutOfRangePanics(t *testing.T) {
	tests := []struct {
		name string
		call func(a *Animator)
	}{
		{"insert negative from", func(a *Animator) { a.NotifyInserted(-1, 1, 0) }},
		{"insert past end", func(a *Animator) { a.NotifyInserted(6, 1, 0) }},
		{"remove past end", func(a *Animator) { a.NotifyRemoved(4, 2, nil, 0) }},
		{"remove negative count", func(a *Animator) { a.NotifyRemoved(0, -1, nil, 0) }},
		{"replace past end", func(a *Animator) { a.NotifyReplaced(3, 3, 1, nil, 0) }},
		{"change past end", func(a *Animator) { a.NotifyChanged(5, 1, nil, 0) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("expected panic")
				}
			}()
			tt.call(NewAnimator(5, testBuilder))
		})
	}
}

func TestNewAnimatorNegativeLengthPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	NewAnimator(-1, testBuilder)
}

// recordingMeasurer captures measurement requests so tests can complete them
// out of band.
type recordingMeasurer struct {
	calls []measureCall
}

type measureCall struct {
	token *CancelToken
	count int
	build func(index int) Element
	done  func(extent float64)
}

func (m *recordingMeasurer) MeasureItems(token *CancelToken, count int, build func(index int) Element, done func(extent float64)) {
	m.calls = append(m.calls, measureCall{token: token, count: count, build: build, done: done})
}

func TestAnimatorCancelledMeasurementDiscarded(t *testing.T) {
	m := &recordingMeasurer{}
	a := NewAnimator(10, testBuilder).SetMeasurer(m)

	a.NotifyReplaced(3, 2, 2, testOffBuilder, 0)
	t0 := time.Unix(100, 0)
	a.Tick(t0)
	a.Tick(t0.Add(time.Second))

	// The dismiss finished; the spacer asked for the dismissed extent.
	if len(m.calls) != 1 {
		t.Fatalf("got %d measurement calls, want 1", len(m.calls))
	}
	first := m.calls[0]

	// A mutation landing on the spacer invalidates the measurement in
	// flight and issues a fresh one.
	a.NotifyInserted(4, 1, 0)
	if len(m.calls) != 2 {
		t.Fatalf("got %d measurement calls after adjustment, want 2", len(m.calls))
	}
	if !first.token.Cancelled() {
		t.Fatal("stale measurement token was not cancelled")
	}

	// The stale completion is silently discarded.
	first.done(99)
	if a.Animating() {
		t.Fatal("stale measurement started an animation")
	}

	// The fresh chain measures the dismissed extent, then the incoming
	// extent, then the spacer starts resizing.
	m.calls[1].done(4)
	if len(m.calls) != 3 {
		t.Fatalf("got %d measurement calls after from-extent, want 3", len(m.calls))
	}
	if m.calls[2].count != 3 {
		t.Errorf("incoming measurement count = %d, want 3", m.calls[2].count)
	}
	m.calls[2].done(6)
	if !a.Animating() {
		t.Fatal("spacer did not start resizing after measurement")
	}
	slot := a.BuildSlot(3)
	if slot.Kind != SlotSpacer || slot.Extent != 4 {
		t.Errorf("spacer slot = %+v, want spacer at extent 4", slot)
	}
}

func TestAnimatorMeasurementTracksShiftedItems(t *testing.T) {
	m := &recordingMeasurer{}
	a := NewAnimator(10, testBuilder).SetMeasurer(m)

	a.NotifyReplaced(5, 2, 2, testOffBuilder, 0)
	t0 := time.Unix(100, 0)
	a.Tick(t0)
	a.Tick(t0.Add(time.Second))

	// Complete the dismissed-extent measurement; the incoming-extent one
	// stays in flight.
	if len(m.calls) != 1 {
		t.Fatalf("got %d measurement calls, want 1", len(m.calls))
	}
	m.calls[0].done(2)
	if len(m.calls) != 2 {
		t.Fatalf("got %d measurement calls, want 2", len(m.calls))
	}

	// A removal in front of the spacer shifts the hidden items from index
	// 5 to index 3 while the measurement is still outstanding. Builds must
	// resolve against the current offset, not the one at issue time.
	a.NotifyRemoved(0, 2, testOffBuilder, 0)
	if got := m.calls[1].build(0); got != "item-3" {
		t.Errorf("measured element = %v, want item-3", got)
	}
}

func TestAnimatorBuildSlotWithoutMutations(t *testing.T) {
	a := NewAnimator(3, testBuilder)
	slot := a.BuildSlot(1)
	if slot.Kind != SlotItem || slot.Element != "item-1" || slot.ItemIndex != 1 {
		t.Errorf("slot = %+v", slot)
	}
	if got := a.BuildSlot(3); got.Kind != SlotNone || got.ItemIndex != -1 {
		t.Errorf("out of range slot = %+v", got)
	}
	if got := a.BuildSlot(-1); got.Kind != SlotNone {
		t.Errorf("negative slot = %+v", got)
	}
}

func TestAnimatorDispose(t *testing.T) {
	a := NewAnimator(5, testBuilder)
	a.NotifyRemoved(1, 2, testOffBuilder, 0)
	a.Dispose()
	if len(a.animations) != 0 {
		t.Errorf("animation set not empty after Dispose: %d", len(a.animations))
	}
	if a.list != nil {
		t.Error("interval list not released after Dispose")
	}
}
