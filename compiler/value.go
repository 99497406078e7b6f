package compiler

// Read records one event's intent to consume a Value: its size, and an
// optional preferred target Site (commonly an IndirectSite pinning it to
// where a prior write will land, or a fixed argument register for a Call).
// Reads are singly linked in event-append order; a Value's unresolved
// reads form a queue the allocator drains one at a time (§3 Value,
// "Read monotonicity" in §8).
type Read struct {
	value  *Value
	size   int
	target Site
	next   *Read
}

// Write records one event's intent to produce a Value of the given size.
type Write struct {
	value *Value
	size  int
}

// Value is an SSA-like handle to a logical operand (§3 Value). It may
// occupy several Sites simultaneously over its lifetime; sites lists
// them in the order new sites were added (earliest first, i.e. cheapest
// ties favor the oldest-known site as §4.3 step 2 specifies).
type Value struct {
	id int

	sites []Site

	reads    *Read // head of the outstanding-reads queue, in event order
	readTail *Read
	nextRead *Read // the next read due to retire; nil once reads are exhausted

	source Site // resolved per-event during allocation (read side)
	target Site // assigned per-event during allocation (write side)
}

// addRead appends r to the value's read queue (called while appending IR,
// in event order, never during allocation).
func (v *Value) addRead(size int, target Site) *Read {
	r := &Read{value: v, size: size, target: target}
	if v.reads == nil {
		v.reads = r
		v.nextRead = r
	} else {
		v.readTail.next = r
	}
	v.readTail = r
	return r
}

// hasPendingReads reports whether any appended read has not yet retired.
func (v *Value) hasPendingReads() bool {
	return v.nextRead != nil
}

// retireRead advances past the value's next pending read, called once the
// allocator has resolved it to a source site.
func (v *Value) retireRead() {
	if v.nextRead != nil {
		v.nextRead = v.nextRead.next
	}
}

// addSite appends a newly acquired site to the value's site list.
func (v *Value) addSite(s Site) {
	v.sites = append(v.sites, s)
}

// removeSite drops s from the value's site list (e.g. a register reclaimed
// once the value has no more pending reads and a fresher site exists).
func (v *Value) removeSite(s Site) {
	for i, existing := range v.sites {
		if existing == s {
			v.sites = append(v.sites[:i], v.sites[i+1:]...)
			return
		}
	}
}

// bestSite returns the value's current site with the lowest CopyCost to
// reach target, breaking ties by earliest-added (§4.3 step 2).
func (v *Value) bestSite(target Site) Site {
	if len(v.sites) == 0 {
		return nil
	}
	best := v.sites[0]
	bestCost := best.CopyCost(target)
	for _, s := range v.sites[1:] {
		c := s.CopyCost(target)
		if c < bestCost {
			best, bestCost = s, c
		}
	}
	return best
}
