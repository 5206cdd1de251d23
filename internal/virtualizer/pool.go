package virtualizer

import (
	"fmt"
	"sort"
)

// SlotState is the lifecycle state of a Slot
type SlotState int

const (
	// Unbound slots were created but never bound to an index
	Unbound SlotState = iota
	// Bound slots represent exactly one index
	Bound
	// Hidden slots were bound once and are parked until the pool needs them again
	Hidden
)

func (s SlotState) String() string {
	switch s {
	case Unbound:
		return "unbound"
	case Bound:
		return "bound"
	case Hidden:
		return "hidden"
	}
	return fmt.Sprintf("SlotState(%d)", int(s))
}

// Slot is a reusable rendering unit wrapping a host element
type Slot[E any] struct {
	// Element is the host's render target, created once by the pool Factory
	Element E

	id    int
	state SlotState
	index int

	// rendered is the index last passed to the render callback, -1 if none
	rendered int
	// epoch is the Virtualizer epoch at the last render
	epoch uint64
}

// ID returns the creation order of the slot, stable for its lifetime
func (s *Slot[E]) ID() int {
	return s.id
}

// State returns the slot's lifecycle state
func (s *Slot[E]) State() SlotState {
	return s.state
}

// Index returns the bound index, or -1 if the slot is not bound
func (s *Slot[E]) Index() int {
	if s.state != Bound {
		return -1
	}
	return s.index
}

func (s *Slot[E]) bind(index int) {
	s.state = Bound
	s.index = index
}

func (s *Slot[E]) hide() {
	s.state = Hidden
	s.index = -1
	s.rendered = -1
}

// Factory creates a new host element for a Slot
type Factory[E any] func() (E, error)

// Pool owns the reusable slots of a list. Only EnsureSize allocates
type Pool[E any] struct {
	factory Factory[E]
	slots   []*Slot[E]
	byIndex map[int]*Slot[E]
}

// NewPool creates an empty pool that grows with factory
func NewPool[E any](factory Factory[E]) *Pool[E] {
	return &Pool[E]{
		factory: factory,
		byIndex: make(map[int]*Slot[E]),
	}
}

// Len returns the number of slots in the pool, whatever their state
func (p *Pool[E]) Len() int {
	return len(p.slots)
}

// Visible returns the number of bound slots
func (p *Pool[E]) Visible() int {
	return len(p.byIndex)
}

// Slots returns every slot in creation order
func (p *Pool[E]) Slots() []*Slot[E] {
	res := make([]*Slot[E], len(p.slots))
	copy(res, p.slots)
	return res
}

// BoundSlots returns the bound slots ordered by index
func (p *Pool[E]) BoundSlots() []*Slot[E] {
	res := make([]*Slot[E], 0, len(p.byIndex))
	for _, s := range p.byIndex {
		res = append(res, s)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].index < res[j].index })
	return res
}

// SlotFor returns the slot bound to index, or nil
func (p *Pool[E]) SlotFor(index int) *Slot[E] {
	return p.byIndex[index]
}

// EnsureSize guarantees at least n slots exist. A factory error stops growth and is returned
func (p *Pool[E]) EnsureSize(n int) error {
	for len(p.slots) < n {
		if p.factory == nil {
			return fmt.Errorf("create slot %d: no factory", len(p.slots))
		}
		el, err := p.factory()
		if err != nil {
			return fmt.Errorf("create slot %d: %w", len(p.slots), err)
		}
		p.slots = append(p.slots, &Slot[E]{Element: el, id: len(p.slots), index: -1, rendered: -1})
	}
	return nil
}

// Reorder binds one slot to each of indexes and returns them in the same order. A slot already bound to a
// requested index keeps it. Every other slot is free for reuse, and bound slots left over are hidden and returned
// as hidden. Duplicate indexes share a slot
func (p *Pool[E]) Reorder(indexes []int) (bound []*Slot[E], hidden []*Slot[E], err error) {
	wanted := make(map[int]struct{}, len(indexes))
	for _, idx := range indexes {
		wanted[idx] = struct{}{}
	}
	if err = p.EnsureSize(len(wanted)); err != nil {
		return nil, nil, err
	}

	kept := make(map[*Slot[E]]bool, len(wanted))
	for idx := range wanted {
		if s, ok := p.byIndex[idx]; ok {
			kept[s] = true
		}
	}

	// bound slots whose index went away are reused first, then hidden ones, then never-bound ones
	var free []*Slot[E]
	for _, state := range []SlotState{Bound, Hidden, Unbound} {
		for _, s := range p.slots {
			if s.state == state && !kept[s] {
				free = append(free, s)
			}
		}
	}

	bound = make([]*Slot[E], len(indexes))
	for i, idx := range indexes {
		if s, ok := p.byIndex[idx]; ok {
			bound[i] = s
			continue
		}
		s := free[0]
		free = free[1:]
		if s.state == Bound {
			delete(p.byIndex, s.index)
		}
		s.bind(idx)
		p.byIndex[idx] = s
		bound[i] = s
	}

	for _, s := range free {
		if s.state != Bound {
			continue
		}
		delete(p.byIndex, s.index)
		s.hide()
		hidden = append(hidden, s)
	}
	return bound, hidden, nil
}

// Shrink drops unused slots until at most n remain. Bound slots are never dropped. Returns the dropped slots
func (p *Pool[E]) Shrink(n int) []*Slot[E] {
	var dropped []*Slot[E]
	for i := len(p.slots) - 1; i >= 0 && len(p.slots)-len(dropped) > n; i-- {
		if p.slots[i].state != Bound {
			dropped = append(dropped, p.slots[i])
		}
	}
	if len(dropped) == 0 {
		return nil
	}
	isDropped := make(map[*Slot[E]]bool, len(dropped))
	for _, s := range dropped {
		isDropped[s] = true
	}
	remaining := p.slots[:0]
	for _, s := range p.slots {
		if !isDropped[s] {
			remaining = append(remaining, s)
		}
	}
	p.slots = remaining
	return dropped
}

// Clear drops every slot, for teardown
func (p *Pool[E]) Clear() {
	p.slots = nil
	p.byIndex = make(map[int]*Slot[E])
}
