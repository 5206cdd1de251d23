package virtualizer

import (
	"errors"
	"github.com/google/go-cmp/cmp"
	"testing"
)

type poolElement struct {
	n int
}

func newCountingPool() (*Pool[*poolElement], *int) {
	created := 0
	return NewPool(func() (*poolElement, error) {
		created++
		return &poolElement{n: created}, nil
	}), &created
}

func boundIndexes(slots []*Slot[*poolElement]) []int {
	res := make([]int, len(slots))
	for i := range slots {
		res[i] = slots[i].Index()
	}
	return res
}

func TestPool_EnsureSize(t *testing.T) {
	p, created := newCountingPool()
	if err := p.EnsureSize(3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p.EnsureSize(2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *created != 3 || p.Len() != 3 {
		t.Errorf("expected 3 slots created, got %d created and len %d", *created, p.Len())
	}
	for _, s := range p.Slots() {
		if s.State() != Unbound || s.Index() != -1 {
			t.Errorf("expected new slot unbound, got %v at %d", s.State(), s.Index())
		}
	}
}

func TestPool_EnsureSizeFactoryError(t *testing.T) {
	errBoom := errors.New("boom")
	n := 0
	p := NewPool(func() (*poolElement, error) {
		n++
		if n > 2 {
			return nil, errBoom
		}
		return &poolElement{n: n}, nil
	})
	err := p.EnsureSize(5)
	if !errors.Is(err, errBoom) {
		t.Fatalf("expected factory error, got %v", err)
	}
	if p.Len() != 2 {
		t.Errorf("expected slots created before the failure to be kept, got %d", p.Len())
	}
}

func TestPool_ReorderKeepsSlotsForSameIndex(t *testing.T) {
	p, created := newCountingPool()
	first, _, err := p.Reorder([]int{0, 1, 2, 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]int{0, 1, 2, 3}, boundIndexes(first)); diff != "" {
		t.Errorf("unexpected indexes (-want +got):\n%s", diff)
	}

	second, hidden, err := p.Reorder([]int{2, 3, 4, 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *created != 4 {
		t.Errorf("expected no allocation on reorder, got %d slots created", *created)
	}
	if len(hidden) != 0 {
		t.Errorf("expected nothing hidden, got %d", len(hidden))
	}
	if second[0] != first[2] || second[1] != first[3] {
		t.Errorf("expected slots for indexes 2 and 3 to be kept")
	}
	if diff := cmp.Diff([]int{2, 3, 4, 5}, boundIndexes(second)); diff != "" {
		t.Errorf("unexpected indexes (-want +got):\n%s", diff)
	}
	if p.SlotFor(0) != nil || p.SlotFor(1) != nil {
		t.Errorf("expected indexes 0 and 1 unbound")
	}
}

func TestPool_ReorderHidesExcessAndReusesHidden(t *testing.T) {
	p, created := newCountingPool()
	if _, _, err := p.Reorder([]int{0, 1, 2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bound, hidden, err := p.Reorder([]int{1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bound) != 1 || bound[0].Index() != 1 {
		t.Fatalf("expected index 1 bound, got %v", boundIndexes(bound))
	}
	if len(hidden) != 2 {
		t.Fatalf("expected 2 hidden slots, got %d", len(hidden))
	}
	for _, s := range hidden {
		if s.State() != Hidden {
			t.Errorf("expected hidden state, got %v", s.State())
		}
	}
	if p.Visible() != 1 || p.Len() != 3 {
		t.Errorf("expected 1 visible of 3 slots, got %d of %d", p.Visible(), p.Len())
	}

	bound, hidden, err = p.Reorder([]int{7, 8, 9})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *created != 3 {
		t.Errorf("expected hidden slots reused, got %d created", *created)
	}
	if len(hidden) != 0 {
		t.Errorf("expected nothing hidden, got %d", len(hidden))
	}
	for _, s := range bound {
		if s.State() != Bound {
			t.Errorf("expected bound state, got %v", s.State())
		}
	}
}

func TestPool_UnboundSlotsNeverHidden(t *testing.T) {
	p, _ := newCountingPool()
	if err := p.EnsureSize(4); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, hidden, err := p.Reorder([]int{0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hidden) != 0 {
		t.Errorf("expected no slot to go from unbound to hidden, got %d", len(hidden))
	}
	unbound := 0
	for _, s := range p.Slots() {
		if s.State() == Unbound {
			unbound++
		}
	}
	if unbound != 3 {
		t.Errorf("expected 3 unbound slots, got %d", unbound)
	}
}

func TestPool_ReorderDuplicates(t *testing.T) {
	p, created := newCountingPool()
	bound, _, err := p.Reorder([]int{4, 4, 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *created != 2 {
		t.Errorf("expected 2 slots for 2 distinct indexes, got %d", *created)
	}
	if bound[0] != bound[1] {
		t.Errorf("expected duplicate indexes to share a slot")
	}
}

func TestPool_ShrinkAndClear(t *testing.T) {
	p, _ := newCountingPool()
	if _, _, err := p.Reorder([]int{0, 1, 2, 3, 4}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, err := p.Reorder([]int{0, 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	dropped := p.Shrink(1)
	if len(dropped) != 3 {
		t.Errorf("expected the 3 hidden slots dropped, got %d", len(dropped))
	}
	if p.Len() != 2 || p.Visible() != 2 {
		t.Errorf("expected bound slots kept, got len %d visible %d", p.Len(), p.Visible())
	}
	p.Clear()
	if p.Len() != 0 || p.Visible() != 0 || p.SlotFor(0) != nil {
		t.Errorf("expected empty pool after clear")
	}
}

func TestPool_BoundSlotsOrderedByIndex(t *testing.T) {
	p, _ := newCountingPool()
	if _, _, err := p.Reorder([]int{5, 3, 9, 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]int{1, 3, 5, 9}, boundIndexes(p.BoundSlots())); diff != "" {
		t.Errorf("unexpected order (-want +got):\n%s", diff)
	}
}
