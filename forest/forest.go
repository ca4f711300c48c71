// Package forest implements the fragment forest (spec.md §3, §4.4): an
// arena of reference-counted Fragments that let many live VM threads
// share common prefixes of their parse trees. A Fragment is one of three
// shapes — a rule entry (RuleStart), a consumed terminal
// (RuleTermValue), or a rule exit (RuleNonTerm) — and the arena frees a
// slot as soon as nothing references it anymore.
//
// The free-list is kept sorted so allocation prefers low indices: this
// keeps the arena compact and gives tests a deterministic fragment
// numbering.
package forest

import "sort"

// Index is an arena slot, or Nil if absent (the top of a complete parse
// has Nil as its RuleStart's parent).
type Index int

// Nil marks "no fragment" — the parent of a root RuleStart, or any other
// absent link.
const Nil Index = -1

// NoName marks the absence of an optional binding/production name.
const NoName = -1

// Kind tags the three fragment shapes.
type Kind uint8

const (
	// RuleStart is a rule-entry node. Link is its parent (Nil at the
	// top of a complete parse), Idx is the nonterminal's string-table
	// index, Name is the optional binding name.
	RuleStart Kind = iota
	// RuleTermValue records a consumed terminal token. Link is the
	// previous sibling, Idx is the token index consumed, Name is the
	// optional binding name.
	RuleTermValue
	// RuleNonTerm is a rule-exit node. Link is the last sibling inside
	// the completed rule, Idx is the nonterminal's string-table index,
	// Name is the optional production label.
	RuleNonTerm
)

// Fragment is one node of the persistent parse forest. Which of Link,
// Idx, and Name are meaningful depends on Kind; see the Kind constants.
type Fragment struct {
	Kind     Kind
	Refcount int
	Link     Index
	Idx      int
	Name     int
}

// Arena owns every Fragment allocated during one VM run.
type Arena struct {
	frags []Fragment
	free  []Index
}

// New returns an empty Arena.
func New() *Arena {
	return &Arena{}
}

// Get returns the fragment stored at idx.
func (a *Arena) Get(idx Index) Fragment {
	return a.frags[idx]
}

// Len returns the number of slots ever allocated, including freed ones.
func (a *Arena) Len() int {
	return len(a.frags)
}

func (a *Arena) alloc(f Fragment) Index {
	if n := len(a.free); n > 0 {
		idx := a.free[0]
		a.free = a.free[1:]
		a.frags[idx] = f
		return idx
	}
	a.frags = append(a.frags, f)
	return Index(len(a.frags) - 1)
}

// AllocRoot allocates a top-of-parse RuleStart fragment (parent Nil)
// with refcount 1, for the single thread the VM spawns at that start
// address.
func (a *Arena) AllocRoot(ntIdx int) Index {
	return a.alloc(Fragment{Kind: RuleStart, Refcount: 1, Link: Nil, Idx: ntIdx, Name: NoName})
}

// AllocForkStart allocates the RuleStart fragment a Fork instruction
// creates for its children, with parent set and refcount 0. The caller
// must call IncRef once per child thread spawned against it, so its
// final refcount equals the number of productions of ntIdx (spec.md
// §4.2).
func (a *Arena) AllocForkStart(parent Index, ntIdx, nameIdx int) Index {
	return a.alloc(Fragment{Kind: RuleStart, Refcount: 0, Link: parent, Idx: ntIdx, Name: nameIdx})
}

// AllocTermValue allocates a RuleTermValue fragment with refcount 1,
// chained after prev.
func (a *Arena) AllocTermValue(prev Index, tokIdx, nameIdx int) Index {
	return a.alloc(Fragment{Kind: RuleTermValue, Refcount: 1, Link: prev, Idx: tokIdx, Name: nameIdx})
}

// AllocNonTerm allocates a RuleNonTerm fragment with refcount 1, closing
// out the rule whose last sibling is child.
func (a *Arena) AllocNonTerm(child Index, ntNameIdx, evNameIdx int) Index {
	return a.alloc(Fragment{Kind: RuleNonTerm, Refcount: 1, Link: child, Idx: ntNameIdx, Name: evNameIdx})
}

// IncRef bumps idx's refcount by one, e.g. once per child thread a Fork
// spawns against a freshly allocated RuleStart.
func (a *Arena) IncRef(idx Index) {
	a.frags[idx].Refcount++
}

// Release decrements idx's refcount and, each time a fragment's count
// reaches zero, frees its slot and continues up its Link — stopping at
// the first fragment whose refcount remains positive (spec.md §4.2's
// match-failure sweep). Release(Nil) is a no-op.
func (a *Arena) Release(idx Index) {
	for idx != Nil {
		f := &a.frags[idx]
		f.Refcount--
		if f.Refcount > 0 {
			return
		}
		if f.Refcount < 0 {
			panic("forest: fragment refcount went negative")
		}
		next := f.Link
		a.freeSlot(idx)
		idx = next
	}
}

func (a *Arena) freeSlot(idx Index) {
	pos := sort.Search(len(a.free), func(i int) bool { return a.free[i] >= idx })
	a.free = append(a.free, Nil)
	copy(a.free[pos+1:], a.free[pos:])
	a.free[pos] = idx
}

// TotalRefcount sums the refcount of every allocated slot, live or freed
// (freed slots always carry 0). This is the arena's total retained
// weight — it grows with every fragment a completed derivation pins, not
// just with currently-active threads, since a non-fork fragment keeps
// its initial refcount of 1 for as long as it stays reachable (the
// reference just moves from the thread that produced it to whichever
// fragment links to it next). It is a diagnostic, not the quantity
// spec.md §8's invariant is stated over; see LiveRefcount for that.
func (a *Arena) TotalRefcount() int {
	sum := 0
	for _, f := range a.frags {
		sum += f.Refcount
	}
	return sum
}

// LiveRefcount sums the refcount of the fragments named in frags,
// counting each distinct index once no matter how many times it
// appears (so several threads still sitting on the same freshly forked
// RuleStart don't get double-counted). Callers pass the fragidx of every
// currently live thread together with the fragidx of every recorded
// tail: that is the left-hand side of spec.md §8's invariant, "sum of
// refcounts over live fragments == (#live threads) + (#tails)" — "live"
// there means currently referenced as someone's fragidx, not merely
// still allocated, which is why this differs from TotalRefcount.
func (a *Arena) LiveRefcount(frags ...Index) int {
	seen := make(map[Index]bool, len(frags))
	sum := 0
	for _, idx := range frags {
		if idx == Nil || seen[idx] {
			continue
		}
		seen[idx] = true
		sum += a.frags[idx].Refcount
	}
	return sum
}

// FreeCount returns the number of reclaimed slots pending reuse.
func (a *Arena) FreeCount() int {
	return len(a.free)
}
