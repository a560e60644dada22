package animlist

// intervalNode is one link of an interval list.
type intervalNode struct {
	prev, next *intervalNode
	list       *intervalList
	iv         interval
}

// intervalList is an ordered sequence of intervals that always spans the
// whole collection: the item counts of its intervals sum to the collection
// length, with no gaps or overlaps. It is created lazily on the first
// mutation, seeded with a single normal interval sized to the initial length.
//
// Structural changes go through replaceNode/insertBefore/appendInterval so
// they stay safe while an outer walk iterates over a snapshot.
type intervalList struct {
	head, tail *intervalNode
}

func newIntervalList(initialLength int) *intervalList {
	l := &intervalList{}
	l.appendInterval(&normalInterval{length: initialLength})
	return l
}

// nodes returns a snapshot of the current node sequence. Walkers iterate over
// the snapshot so structural substitutions don't invalidate their cursor.
func (l *intervalList) nodes() []*intervalNode {
	var nodes []*intervalNode
	for n := l.head; n != nil; n = n.next {
		nodes = append(nodes, n)
	}
	return nodes
}

func (l *intervalList) itemCount() int {
	total := 0
	for n := l.head; n != nil; n = n.next {
		total += n.iv.itemCount()
	}
	return total
}

func (l *intervalList) buildCount() int {
	total := 0
	for n := l.head; n != nil; n = n.next {
		total += n.iv.buildCount()
	}
	return total
}

// buildOffset returns the build index of the node's first slot.
func (l *intervalList) buildOffset(node *intervalNode) int {
	offset := 0
	for n := l.head; n != nil && n != node; n = n.next {
		offset += n.iv.buildCount()
	}
	return offset
}

// itemOffset returns the collection index of the node's first covered item.
func (l *intervalList) itemOffset(node *intervalNode) int {
	offset := 0
	for n := l.head; n != nil && n != node; n = n.next {
		offset += n.iv.itemCount()
	}
	return offset
}

func (l *intervalList) appendInterval(iv interval) *intervalNode {
	node := &intervalNode{list: l, iv: iv}
	node.prev = l.tail
	if l.tail != nil {
		l.tail.next = node
	} else {
		l.head = node
	}
	l.tail = node
	return node
}

func (l *intervalList) insertBefore(at *intervalNode, iv interval) *intervalNode {
	if at == nil {
		return l.appendInterval(iv)
	}
	node := &intervalNode{list: l, iv: iv, prev: at.prev, next: at}
	if at.prev != nil {
		at.prev.next = node
	} else {
		l.head = node
	}
	at.prev = node
	return node
}

// replaceNode atomically substitutes the node's interval with the given
// intervals and disposes the old one. An empty replacement removes the node.
// The returned nodes are the inserted links, in order.
func (l *intervalList) replaceNode(node *intervalNode, ivs ...interval) []*intervalNode {
	inserted := make([]*intervalNode, 0, len(ivs))
	for _, iv := range ivs {
		inserted = append(inserted, l.insertBefore(node, iv))
	}
	l.removeNode(node)
	return inserted
}

func (l *intervalList) removeNode(node *intervalNode) {
	if node.list != l {
		return
	}
	if node.prev != nil {
		node.prev.next = node.next
	} else {
		l.head = node.next
	}
	if node.next != nil {
		node.next.prev = node.prev
	} else {
		l.tail = node.prev
	}
	node.prev, node.next, node.list = nil, nil, nil
	node.iv.dispose()
}

// dispose tears the list down top-down, detaching every animation.
func (l *intervalList) dispose() {
	for n := l.head; n != nil; {
		next := n.next
		n.prev, n.next, n.list = nil, nil, nil
		n.iv.dispose()
		n = next
	}
	l.head, l.tail = nil, nil
}

// distribution describes how one mutation notification lands on one interval.
type distribution struct {
	// node is the touched interval, or nil when the mutation appends past
	// the end of the sequence.
	node *intervalNode

	// before is set when the mutation is a pure insertion that must land
	// as a standalone interval in front of node instead of touching it.
	before bool

	// leading and trailing are the item counts of the node's interval
	// outside the affected range.
	leading, trailing int

	// removed is how many items of the affected range fall on this
	// interval.
	removed int

	// inserted is the mutation's insert count; it lands with the first
	// touched interval only.
	inserted int
}

// distribute walks the sequence accumulating item offsets and invokes visit
// for every interval the mutation touches. An interval fully containing the
// range is visited once with its leading/trailing split sizes; otherwise each
// intersecting interval is consumed with its entire overlap and the remainder
// carries over, so one mutation may touch arbitrarily many intervals. Visits
// run over a snapshot with precomputed offsets: callbacks may freely replace
// their node.
func (l *intervalList) distribute(from, removeCount, insertCount int, visit func(distribution)) {
	if removeCount == 0 && insertCount == 0 {
		return
	}
	nodes := l.nodes()

	if removeCount == 0 {
		l.distributeInsert(nodes, from, insertCount, visit)
		return
	}

	acc := 0
	first := true
	for _, n := range nodes {
		count := n.iv.itemCount()
		if count == 0 {
			continue
		}
		start, end := acc, acc+count
		acc = end
		if end <= from {
			continue
		}
		if start >= from+removeCount {
			break
		}
		overlapStart := max(from, start)
		overlapEnd := min(from+removeCount, end)
		d := distribution{
			node:     n,
			leading:  overlapStart - start,
			trailing: end - overlapEnd,
			removed:  overlapEnd - overlapStart,
		}
		if first {
			d.inserted = insertCount
			first = false
		}
		visit(d)
	}
}

// distributeInsert routes a pure insertion. Strictly inside an interval the
// interval is split; on a boundary the insertion joins the first splittable
// interval at that offset, or lands as a standalone interval in front of
// whatever else sits there.
func (l *intervalList) distributeInsert(nodes []*intervalNode, from, insertCount int, visit func(distribution)) {
	acc := 0
	var boundary *intervalNode
	for _, n := range nodes {
		count := n.iv.itemCount()
		if acc == from {
			if splittable(n.iv) {
				visit(distribution{node: n, trailing: count, inserted: insertCount})
				return
			}
			if boundary == nil {
				boundary = n
			}
		}
		if from > acc && from < acc+count {
			visit(distribution{
				node:     n,
				leading:  from - acc,
				trailing: acc + count - from,
				inserted: insertCount,
			})
			return
		}
		acc += count
		if acc > from {
			break
		}
	}
	if boundary != nil {
		visit(distribution{node: boundary, before: true, inserted: insertCount})
		return
	}
	visit(distribution{inserted: insertCount})
}

// splittable reports whether a mutation inside the interval splits it into
// up to three intervals instead of adjusting or re-routing.
func splittable(iv interval) bool {
	switch iv.(type) {
	case *normalInterval, *insertingInterval, *changingInterval, *readyToChangeInterval:
		return true
	}
	return false
}
