package virtualizer

import (
	"errors"
	"fmt"
	"github.com/google/go-cmp/cmp"
	"testing"
)

type testRow struct {
	index  int
	text   string
	loaded bool
}

type recorder struct {
	v        *Virtualizer[string, *testRow]
	created  int
	renders  []int
	requests []PageRequest
	hidden   int
	measure  func(index int) int
}

func testOptions() Options {
	return Options{
		EstimatedRowSize: 50,
		Overscan:         0,
		PageSize:         50,
		ReconcileEvery:   0,
	}
}

func newRecorder(opts Options) *recorder {
	r := &recorder{}
	r.v = New[string, *testRow](func() (*testRow, error) {
		r.created++
		return &testRow{index: -1}, nil
	}, opts)
	r.v.OnRenderSlot(func(slot *Slot[*testRow], index int, item string, loaded bool) {
		r.renders = append(r.renders, index)
		slot.Element.index = index
		slot.Element.text = item
		slot.Element.loaded = loaded
		if r.measure != nil {
			r.v.Measure(index, r.measure(index))
		}
	})
	r.v.OnRequestPage(func(req PageRequest) {
		r.requests = append(r.requests, req)
	})
	r.v.OnHideSlot(func(*Slot[*testRow]) {
		r.hidden++
	})
	r.v.SetViewportSize(500)
	return r
}

func (r *recorder) update(t *testing.T) {
	t.Helper()
	if err := r.v.Update(); err != nil {
		t.Fatalf("unexpected update error: %v", err)
	}
}

func (r *recorder) boundIndexes() map[int]int {
	res := make(map[int]int)
	for _, s := range r.v.RenderedSlots() {
		res[s.Index()] = s.ID()
	}
	return res
}

func TestVirtualizer_WindowSize(t *testing.T) {
	for _, n := range []int{0, 1, 5, 10, 11, 1000} {
		t.Run(fmt.Sprintf("%d items", n), func(t *testing.T) {
			r := newRecorder(testOptions())
			r.v.SetItemCount(n)
			r.update(t)
			if got, want := r.v.Window().Len(), min(n, 10); got != want {
				t.Errorf("expected window of %d rows, got %d (%+v)", want, got, r.v.Window())
			}
			if got := r.v.Pool().Visible(); got != min(n, 10) {
				t.Errorf("expected %d visible slots, got %d", min(n, 10), got)
			}
			if n == 0 && r.v.LastVisibleIndex() != -1 {
				t.Errorf("expected last visible index -1 for an empty list, got %d", r.v.LastVisibleIndex())
			}
		})
	}
}

func TestVirtualizer_InitialWindow(t *testing.T) {
	r := newRecorder(testOptions())
	r.v.SetItemCount(1000)
	r.update(t)
	if diff := cmp.Diff(Window{0, 9}, r.v.Window()); diff != "" {
		t.Errorf("unexpected window (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, r.renders); diff != "" {
		t.Errorf("unexpected renders (-want +got):\n%s", diff)
	}
	for _, s := range r.v.RenderedSlots() {
		if s.Element.loaded {
			t.Errorf("expected placeholder at index %d", s.Index())
		}
	}
}

func TestVirtualizer_UpdateIsIdempotent(t *testing.T) {
	r := newRecorder(testOptions())
	r.v.SetItemCount(1000)
	r.update(t)
	r.v.Flush()
	r.renders = nil
	r.update(t)
	r.update(t)
	if len(r.renders) != 0 {
		t.Errorf("expected no renders without changes, got %v", r.renders)
	}
	if r.created != 10 {
		t.Errorf("expected 10 slots created, got %d", r.created)
	}
}

func TestVirtualizer_ZeroViewportStillShowsOneRow(t *testing.T) {
	r := newRecorder(testOptions())
	r.v.SetViewportSize(0)
	r.v.SetItemCount(10)
	r.update(t)
	if diff := cmp.Diff(Window{0, 0}, r.v.Window()); diff != "" {
		t.Errorf("unexpected window (-want +got):\n%s", diff)
	}
}

func TestVirtualizer_ScrollToIndex(t *testing.T) {
	r := newRecorder(testOptions())
	r.v.SetItemCount(1000)
	r.update(t)
	r.v.ScrollToIndex(500, ScrollOptions{})
	r.update(t)
	if r.v.ScrollOffset() != 24550 {
		t.Errorf("expected scroll offset 24550, got %d", r.v.ScrollOffset())
	}
	if diff := cmp.Diff(Window{491, 500}, r.v.Window()); diff != "" {
		t.Errorf("unexpected window (-want +got):\n%s", diff)
	}
	if r.created != 10 {
		t.Errorf("expected slots reused, got %d created", r.created)
	}
}

func TestVirtualizer_ScrollToVisibleIndexDoesNothing(t *testing.T) {
	r := newRecorder(testOptions())
	r.v.SetItemCount(1000)
	r.update(t)
	r.renders = nil
	r.v.ScrollToIndex(5, ScrollOptions{})
	r.update(t)
	if r.v.ScrollOffset() != 0 {
		t.Errorf("expected scroll offset 0, got %d", r.v.ScrollOffset())
	}
	if len(r.renders) != 0 {
		t.Errorf("expected no renders, got %v", r.renders)
	}
}

func TestVirtualizer_ScrollRoundTrip(t *testing.T) {
	r := newRecorder(testOptions())
	r.measure = func(index int) int {
		if index%7 == 0 {
			return 120
		}
		return 50
	}
	r.v.SetItemCount(1000)
	r.update(t)
	for _, idx := range []int{999, 0, 500, 501, 499, 7, 700, 3} {
		for _, align := range []Align{AlignAuto, AlignStart, AlignEnd, AlignCenter} {
			r.v.ScrollToIndex(idx, ScrollOptions{Align: align})
			r.update(t)
			if !r.v.Window().Contains(idx) {
				t.Errorf("expected index %d in window %+v after scroll with align %d", idx, r.v.Window(), align)
			}
		}
	}
}

func TestVirtualizer_ShrinkCount(t *testing.T) {
	r := newRecorder(testOptions())
	r.v.SetItemCount(1000)
	r.update(t)
	r.v.ScrollToIndex(500, ScrollOptions{})
	r.update(t)

	r.v.SetItemCount(5)
	r.update(t)
	if r.v.ScrollOffset() != 0 {
		t.Errorf("expected scroll offset clamped to 0, got %d", r.v.ScrollOffset())
	}
	if diff := cmp.Diff(Window{0, 4}, r.v.Window()); diff != "" {
		t.Errorf("unexpected window (-want +got):\n%s", diff)
	}
	if r.v.Pool().Visible() != 5 {
		t.Errorf("expected 5 visible slots, got %d", r.v.Pool().Visible())
	}
	if r.hidden != 5 {
		t.Errorf("expected 5 slots hidden, got %d", r.hidden)
	}
}

func TestVirtualizer_OverlappingRangesRequestOnePage(t *testing.T) {
	r := newRecorder(testOptions())
	r.v.SetItemCount(1000)
	r.update(t)
	r.v.SetScrollOffset(100)
	r.update(t)
	if len(r.requests) != 0 {
		t.Fatalf("expected requests deferred to the next frame, got %d", len(r.requests))
	}
	r.v.Flush()
	if diff := cmp.Diff([]int{0}, requestedPages(r.requests)); diff != "" {
		t.Errorf("unexpected pages (-want +got):\n%s", diff)
	}
	if r.v.OutstandingPages() != 1 {
		t.Errorf("expected 1 outstanding page, got %d", r.v.OutstandingPages())
	}
}

func TestVirtualizer_DeliverRerendersOnlyReceivedRows(t *testing.T) {
	opts := testOptions()
	opts.PageSize = 1
	r := newRecorder(opts)
	r.v.SetItemCount(10)
	r.update(t)
	r.v.Flush()
	if len(r.requests) != 10 {
		t.Fatalf("expected 10 page requests, got %d", len(r.requests))
	}
	before := r.boundIndexes()
	r.renders = nil

	r.v.Deliver(r.requests[3], []string{"item 3"}, 10)
	r.v.Flush()

	if diff := cmp.Diff([]int{3}, r.renders); diff != "" {
		t.Errorf("unexpected renders (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(before, r.boundIndexes()); diff != "" {
		t.Errorf("unexpected slot binding change (-want +got):\n%s", diff)
	}
	s := r.v.Pool().SlotFor(3)
	if s == nil || !s.Element.loaded || s.Element.text != "item 3" {
		t.Errorf("expected slot 3 to show the delivered item, got %+v", s)
	}
	if len(r.requests) != 10 {
		t.Errorf("expected no new requests, got %d", len(r.requests))
	}
}

func TestVirtualizer_DeliveryAfterResetIsDiscarded(t *testing.T) {
	r := newRecorder(testOptions())
	r.v.SetItemCount(1000)
	r.update(t)
	r.v.Flush()
	old := r.requests[0]

	r.v.Reset()
	r.v.Deliver(old, makeItems(0, 50), 1000)
	if _, loaded := r.v.Item(0); loaded {
		t.Errorf("expected stale delivery discarded")
	}
	r.update(t)
	r.v.Flush()
	if len(r.requests) != 2 || r.requests[1].Page != 0 {
		t.Errorf("expected page 0 requested again, got %v", requestedPages(r.requests))
	}
}

func TestVirtualizer_SetItemsNeedsNoRequests(t *testing.T) {
	r := newRecorder(testOptions())
	r.v.SetItems(makeItems(0, 100))
	r.update(t)
	r.v.Flush()
	if len(r.requests) != 0 {
		t.Errorf("expected no page requests, got %v", requestedPages(r.requests))
	}
	s := r.v.Pool().SlotFor(0)
	if s == nil || s.Element.text != "item 0" || !s.Element.loaded {
		t.Errorf("expected loaded item 0, got %+v", s)
	}

	r.renders = nil
	r.v.SetItem(2, "two")
	r.update(t)
	if diff := cmp.Diff([]int{2}, r.renders); diff != "" {
		t.Errorf("unexpected renders (-want +got):\n%s", diff)
	}
}

func TestVirtualizer_UpdateFromRenderDoesNotRecurse(t *testing.T) {
	r := newRecorder(testOptions())
	depth, maxDepth := 0, 0
	r.v.OnRenderSlot(func(slot *Slot[*testRow], index int, item string, loaded bool) {
		depth++
		maxDepth = max(maxDepth, depth)
		if err := r.v.Update(); err != nil {
			t.Errorf("unexpected error from nested update: %v", err)
		}
		depth--
	})
	r.v.SetItemCount(1000)
	r.update(t)
	if maxDepth != 1 {
		t.Errorf("expected no nested render, got depth %d", maxDepth)
	}
	if !r.v.Pending() {
		t.Errorf("expected a deferred update")
	}
}

func TestVirtualizer_FactoryError(t *testing.T) {
	errBoom := errors.New("boom")
	created := 0
	fail := true
	v := New[string, *testRow](func() (*testRow, error) {
		if fail && created == 3 {
			return nil, errBoom
		}
		created++
		return &testRow{}, nil
	}, testOptions())
	v.SetViewportSize(500)
	v.SetItemCount(1000)

	err := v.Update()
	if !errors.Is(err, errBoom) {
		t.Fatalf("expected factory error, got %v", err)
	}
	if !errors.Is(v.Err(), errBoom) {
		t.Errorf("expected error kept, got %v", v.Err())
	}

	fail = false
	if err := v.Update(); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if v.Err() != nil {
		t.Errorf("expected error cleared, got %v", v.Err())
	}
	if diff := cmp.Diff(Window{0, 9}, v.Window()); diff != "" {
		t.Errorf("unexpected window (-want +got):\n%s", diff)
	}
}

func TestVirtualizer_MeasuredRowsShrinkWindow(t *testing.T) {
	r := newRecorder(testOptions())
	r.measure = func(int) int { return 100 }
	r.v.SetItemCount(1000)
	r.update(t)
	if diff := cmp.Diff(Window{0, 4}, r.v.Window()); diff != "" {
		t.Errorf("unexpected window (-want +got):\n%s", diff)
	}
	if r.hidden != 5 {
		t.Errorf("expected 5 hidden slots, got %d", r.hidden)
	}

	r.v.ScrollBy(500)
	r.update(t)
	if diff := cmp.Diff(Window{5, 9}, r.v.Window()); diff != "" {
		t.Errorf("unexpected window (-want +got):\n%s", diff)
	}
	if r.created != 10 || r.v.Pool().Len() != 10 {
		t.Errorf("expected pooled slots reused, created %d, pool %d", r.created, r.v.Pool().Len())
	}
}

func TestVirtualizer_MeasuringAboveWindowKeepsRowsInPlace(t *testing.T) {
	r := newRecorder(testOptions())
	r.v.SetItemCount(1000)
	r.v.SetScrollOffset(1000)
	r.update(t)
	first := r.v.FirstVisibleIndex()

	r.v.Measure(3, 80)
	if r.v.ScrollOffset() != 1030 {
		t.Errorf("expected scroll offset shifted to 1030, got %d", r.v.ScrollOffset())
	}
	r.v.Flush()
	if r.v.FirstVisibleIndex() != first {
		t.Errorf("expected first visible index %d, got %d", first, r.v.FirstVisibleIndex())
	}
}

func TestVirtualizer_ReconcileEstimate(t *testing.T) {
	opts := testOptions()
	opts.ReconcileEvery = 4
	r := newRecorder(opts)
	r.measure = func(int) int { return 100 }
	r.v.SetItemCount(1000)
	r.update(t)
	if r.v.TotalSize() != 100000 {
		t.Errorf("expected total size 100000, got %d", r.v.TotalSize())
	}
	if diff := cmp.Diff(Window{0, 4}, r.v.Window()); diff != "" {
		t.Errorf("unexpected window (-want +got):\n%s", diff)
	}
}

func TestVirtualizer_Overscan(t *testing.T) {
	opts := testOptions()
	opts.Overscan = 2
	r := newRecorder(opts)
	r.v.SetItemCount(1000)
	r.v.SetScrollOffset(1000)
	r.update(t)
	if diff := cmp.Diff(Window{20, 29}, r.v.Window()); diff != "" {
		t.Errorf("unexpected window (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(Window{18, 31}, r.v.RenderedRange()); diff != "" {
		t.Errorf("unexpected rendered range (-want +got):\n%s", diff)
	}
	if r.v.Pool().Visible() != 14 {
		t.Errorf("expected 14 bound slots, got %d", r.v.Pool().Visible())
	}
}

func TestVirtualizer_ScrolledToEdges(t *testing.T) {
	r := newRecorder(testOptions())
	r.v.SetItemCount(1000)
	r.update(t)
	if !r.v.IsScrolledToTop() || r.v.IsScrolledToBottom() {
		t.Errorf("expected scrolled to top only")
	}
	r.v.ScrollToIndex(999, ScrollOptions{Align: AlignEnd})
	r.update(t)
	if r.v.IsScrolledToTop() || !r.v.IsScrolledToBottom() {
		t.Errorf("expected scrolled to bottom only")
	}
	if r.v.LastVisibleIndex() != 999 {
		t.Errorf("expected last visible index 999, got %d", r.v.LastVisibleIndex())
	}
}

func TestVirtualizer_Teardown(t *testing.T) {
	r := newRecorder(testOptions())
	r.v.SetItemCount(1000)
	r.update(t)
	r.v.Teardown()
	if r.v.Pool().Len() != 0 {
		t.Errorf("expected no slots after teardown, got %d", r.v.Pool().Len())
	}
	r.update(t)
	if r.v.Pool().Len() != 10 {
		t.Errorf("expected slots recreated, got %d", r.v.Pool().Len())
	}
}

func TestVirtualizer_FailedPageIsRequestedAgainOnNextFrame(t *testing.T) {
	r := newRecorder(testOptions())
	r.v.SetItemCount(100)
	r.update(t)
	r.v.Flush()
	if diff := cmp.Diff([]int{0}, requestedPages(r.requests)); diff != "" {
		t.Fatalf("unexpected requests (-want +got):\n%s", diff)
	}

	r.v.Fail(r.requests[0])
	if !r.v.Pending() {
		t.Fatalf("expected an update scheduled after a failed page")
	}
	r.v.Flush()
	r.v.Flush()
	if diff := cmp.Diff([]int{0, 0}, requestedPages(r.requests)); diff != "" {
		t.Errorf("unexpected requests (-want +got):\n%s", diff)
	}
	if got := r.v.OutstandingPages(); got != 1 {
		t.Errorf("expected 1 outstanding page, got %d", got)
	}
}

func TestVirtualizer_UnknownTotalLoadsMoreAtTheEnd(t *testing.T) {
	opts := testOptions()
	opts.PageSize = 10
	r := newRecorder(opts)
	r.v.RequestPage(0)
	r.v.Flush()
	r.v.Deliver(r.requests[0], makeItems(0, 10), -1)
	r.v.Flush()
	r.v.Flush()
	if diff := cmp.Diff([]int{0, 1}, requestedPages(r.requests)); diff != "" {
		t.Fatalf("unexpected requests (-want +got):\n%s", diff)
	}

	r.v.Deliver(r.requests[1], makeItems(10, 10), -1)
	r.v.Flush()
	r.v.Flush()
	if got := r.v.ItemCount(); got != 20 {
		t.Fatalf("expected 20 items, got %d", got)
	}
	if len(r.requests) != 2 {
		t.Errorf("expected no request while the end is off screen, got %v", requestedPages(r.requests))
	}

	r.v.ScrollToIndex(19, ScrollOptions{Align: AlignEnd})
	r.update(t)
	r.v.Flush()
	if diff := cmp.Diff([]int{0, 1, 2}, requestedPages(r.requests)); diff != "" {
		t.Errorf("unexpected requests (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(Window{10, 19}, r.v.Window()); diff != "" {
		t.Errorf("unexpected window (-want +got):\n%s", diff)
	}
}

func TestVirtualizer_FactoryErrorKeepsPreviousWindow(t *testing.T) {
	created := 0
	v := New[string, *testRow](func() (*testRow, error) {
		if created == 10 {
			return nil, errors.New("no more rows")
		}
		created++
		return &testRow{}, nil
	}, testOptions())
	v.SetViewportSize(500)
	v.SetItemCount(1000)
	if err := v.Update(); err != nil {
		t.Fatalf("unexpected update error: %v", err)
	}

	v.SetViewportSize(1000)
	if err := v.Update(); err == nil {
		t.Fatalf("expected factory error")
	}
	if diff := cmp.Diff(Window{0, 9}, v.Window()); diff != "" {
		t.Errorf("unexpected window (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(Window{0, 9}, v.RenderedRange()); diff != "" {
		t.Errorf("unexpected rendered range (-want +got):\n%s", diff)
	}
	if got := v.LastVisibleIndex(); got != 9 {
		t.Errorf("expected last visible index 9, got %d", got)
	}
}
