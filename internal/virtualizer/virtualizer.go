package virtualizer

import (
	"github.com/rs/zerolog"
)

// Terminology:
// - count: the number of logical items, loaded or not
// - window: the indexes intersecting the viewport
// - rendered: the window plus overscan rows on each side, each bound to a pooled slot
// - placeholder: an index whose item has not been delivered yet
//
//                 offset   index
//  +-----------+  0        0        <- overscan, rendered but not visible
//  |           |  1        1
//  | viewport  |  2        2        <- window.First
//  |           |  3        3
//  +-----------+  4        4        <- window.Last
//                 5        5        <- overscan

// RenderFunc binds a slot to an item. loaded is false for placeholders, in which case item is the zero value
type RenderFunc[T, E any] func(slot *Slot[E], index int, item T, loaded bool)

type dirtyFlag uint8

const (
	// dirtyLayout: count, estimate, viewport, scroll position or row sizes changed
	dirtyLayout dirtyFlag = 1 << iota
	// dirtyContent: items or invalidated indexes need re-rendering
	dirtyContent
	// dirtyData: placeholders may need page requests
	dirtyData

	dirtyAll = dirtyLayout | dirtyContent | dirtyData
)

type scrollRequest struct {
	index int
	align Align
}

// ScrollOptions controls ScrollToIndex
type ScrollOptions struct {
	Align Align
}

// Virtualizer renders a large logical list through a small pool of slots.
//
// It is single-threaded: every method must be called from the host's event loop. Inputs only mark the
// virtualizer dirty; Update runs one recompute pass over them in order (reconcile estimate, scroll position,
// window, slot binding, page requests). Update re-renders a slot only when its bound index changed or its index was
// invalidated, so calling it again without changes renders nothing
type Virtualizer[T, E any] struct {
	opts   Options
	pool   *Pool[E]
	mapper *Mapper
	pages  *Pages[T]
	log    zerolog.Logger

	viewportSize int
	scrollOffset int
	window       Window
	rendered     Window

	pendingScroll *scrollRequest

	dirty   dirtyFlag
	invalid map[int]struct{}
	epoch   uint64

	updating           bool
	updateScheduled    bool
	measuredDuringPass bool
	err                error

	renderSlot RenderFunc[T, E]
	hideSlot   func(*Slot[E])
}

// New creates a Virtualizer whose slots hold elements created by factory
func New[T, E any](factory Factory[E], opts Options) *Virtualizer[T, E] {
	opts = opts.normalized()
	v := &Virtualizer[T, E]{
		opts:     opts,
		pool:     NewPool(factory),
		mapper:   NewMapper(0, opts.EstimatedRowSize),
		pages:    NewPages[T](opts.PageSize, opts.Scheduler, *opts.Logger),
		log:      *opts.Logger,
		window:   EmptyWindow,
		rendered: EmptyWindow,
		invalid:  make(map[int]struct{}),
		dirty:    dirtyAll,
	}
	return v
}

// OnRenderSlot sets the callback binding a slot to an index
func (v *Virtualizer[T, E]) OnRenderSlot(fn RenderFunc[T, E]) {
	v.renderSlot = fn
	v.InvalidateAll()
}

// OnRequestPage sets the callback receiving page requests. Answer each one with Deliver or Fail
func (v *Virtualizer[T, E]) OnRequestPage(fn func(PageRequest)) {
	v.pages.OnRequest(fn)
}

// OnHideSlot sets the callback for slots that leave the rendered range and are parked
func (v *Virtualizer[T, E]) OnHideSlot(fn func(*Slot[E])) {
	v.hideSlot = fn
}

// Scheduler returns the scheduler receiving deferred work
func (v *Virtualizer[T, E]) Scheduler() Scheduler {
	return v.opts.Scheduler
}

// Flush runs deferred work if the scheduler is flushable, e.g. the default FrameQueue. Call it once per frame
func (v *Virtualizer[T, E]) Flush() int {
	if q, ok := v.opts.Scheduler.(interface{ Flush() int }); ok {
		return q.Flush()
	}
	return 0
}

// Pending returns true if the scheduler reports deferred work
func (v *Virtualizer[T, E]) Pending() bool {
	if q, ok := v.opts.Scheduler.(interface{ Pending() bool }); ok {
		return q.Pending()
	}
	return false
}

// SetItemCount sets the number of logical items
func (v *Virtualizer[T, E]) SetItemCount(count int) {
	count = max(0, count)
	v.mapper.SetCount(count)
	v.pages.SetCount(count)
	v.dirty |= dirtyLayout | dirtyData
}

// ItemCount returns the number of logical items
func (v *Virtualizer[T, E]) ItemCount() int {
	return v.mapper.Count()
}

// SetItems replaces the data with a fully loaded list
func (v *Virtualizer[T, E]) SetItems(items []T) {
	v.pages.SetItems(items)
	v.mapper.SetCount(len(items))
	v.mapper.ClearMeasurements()
	v.InvalidateAll()
}

// SetItem replaces the item at index and re-renders it if visible
func (v *Virtualizer[T, E]) SetItem(index int, item T) {
	if v.pages.SetItem(index, item) {
		v.Invalidate(index)
	}
}

// Item returns the item at index and whether it is loaded
func (v *Virtualizer[T, E]) Item(index int) (T, bool) {
	return v.pages.Item(index)
}

// SetEstimatedRowSize sets the size assumed for unmeasured rows, keeping the first visible row in place
func (v *Virtualizer[T, E]) SetEstimatedRowSize(size int) {
	v.anchored(func() { v.mapper.SetEstimate(size) })
	v.dirty |= dirtyLayout
}

// SetViewportSize sets the size of the visible area
func (v *Virtualizer[T, E]) SetViewportSize(size int) {
	size = max(0, size)
	if size == v.viewportSize {
		return
	}
	v.viewportSize = size
	v.dirty |= dirtyLayout
}

// ViewportSize returns the size of the visible area
func (v *Virtualizer[T, E]) ViewportSize() int {
	return v.viewportSize
}

// SetPageSize sets the number of items per page request. Outstanding requests are dropped
func (v *Virtualizer[T, E]) SetPageSize(pageSize int) {
	v.pages.SetPageSize(pageSize)
	v.dirty |= dirtyData
}

// SetOverscan sets the number of rows rendered beyond each edge of the window
func (v *Virtualizer[T, E]) SetOverscan(n int) {
	v.opts.Overscan = max(0, n)
	v.dirty |= dirtyLayout
}

// SetScrollOffset scrolls to offset. It is clamped on Update
func (v *Virtualizer[T, E]) SetScrollOffset(offset int) {
	v.pendingScroll = nil
	v.scrollOffset = max(0, offset)
	v.dirty |= dirtyLayout
}

// ScrollBy scrolls by delta, negative for up
func (v *Virtualizer[T, E]) ScrollBy(delta int) {
	if delta == 0 {
		return
	}
	v.SetScrollOffset(ClampScrollOffset(v.mapper, v.scrollOffset+delta, v.viewportSize))
}

// ScrollOffset returns the current scroll offset
func (v *Virtualizer[T, E]) ScrollOffset() int {
	return v.scrollOffset
}

// ScrollToIndex scrolls so the row at index is in view, per opts.Align. index is clamped into range. The target
// is kept through the next Update so it stays in view when rendered rows measure differently than estimated
func (v *Virtualizer[T, E]) ScrollToIndex(index int, opts ScrollOptions) {
	if v.mapper.Count() == 0 {
		return
	}
	index = clampValMinMax(index, 0, v.mapper.Count()-1)
	v.scrollOffset = ScrollTarget(v.mapper, v.scrollOffset, v.viewportSize, index, opts.Align)
	v.pendingScroll = &scrollRequest{index: index, align: opts.Align}
	v.dirty |= dirtyLayout
}

// IsScrolledToTop returns true if nothing is above the viewport
func (v *Virtualizer[T, E]) IsScrolledToTop() bool {
	return v.scrollOffset <= 0
}

// IsScrolledToBottom returns true if nothing is below the viewport
func (v *Virtualizer[T, E]) IsScrolledToBottom() bool {
	return v.scrollOffset >= MaxScrollOffset(v.mapper, v.viewportSize)
}

// Measure records the actual size of the row at index. Rows above the window shift the scroll offset by the
// difference so the visible rows stay in place
func (v *Virtualizer[T, E]) Measure(index, size int) {
	prev := v.mapper.SizeOf(index)
	if !v.mapper.Measure(index, size) {
		return
	}
	if !v.window.Empty() && index < v.window.First {
		v.scrollOffset = max(0, v.scrollOffset+size-prev)
	}
	if v.updating {
		v.measuredDuringPass = true
		return
	}
	v.dirty |= dirtyLayout
	v.scheduleUpdate()
}

// ClearMeasurements forgets every measured row size, e.g. after the row width changed, and re-renders all rows
func (v *Virtualizer[T, E]) ClearMeasurements() {
	v.anchored(v.mapper.ClearMeasurements)
	v.InvalidateAll()
}

// OffsetOf returns the start offset of the row at index, clamped into range
func (v *Virtualizer[T, E]) OffsetOf(index int) int {
	return v.mapper.OffsetOf(index)
}

// SizeOf returns the measured or estimated size of the row at index
func (v *Virtualizer[T, E]) SizeOf(index int) int {
	return v.mapper.SizeOf(index)
}

// IndexAt returns the index of the row containing offset, clamped into range
func (v *Virtualizer[T, E]) IndexAt(offset int) int {
	return v.mapper.IndexAt(offset)
}

// TotalSize returns the size of all rows, measured or estimated
func (v *Virtualizer[T, E]) TotalSize() int {
	return v.mapper.TotalSize()
}

// Invalidate re-renders the row at index on the next Update, e.g. when its selection or focus changed
func (v *Virtualizer[T, E]) Invalidate(index int) {
	if index < 0 || index >= v.mapper.Count() {
		return
	}
	v.invalid[index] = struct{}{}
	v.dirty |= dirtyContent
}

// InvalidateAll re-renders every rendered row on the next Update
func (v *Virtualizer[T, E]) InvalidateAll() {
	v.epoch++
	v.dirty |= dirtyAll
}

// Deliver merges a page answered by the host's data source and schedules an update. Only the slots bound to
// indexes that received items re-render. Deliveries for dropped or superseded requests are ignored
func (v *Virtualizer[T, E]) Deliver(req PageRequest, items []T, total int) {
	received, ok := v.pages.Deliver(req, items, total)
	if v.pages.Count() != v.mapper.Count() {
		v.mapper.SetCount(v.pages.Count())
		v.dirty |= dirtyLayout
	}
	if ok {
		for idx := received.First; idx <= received.Last; idx++ {
			if v.rendered.Contains(idx) {
				v.invalid[idx] = struct{}{}
			}
		}
		v.dirty |= dirtyContent | dirtyData
	}
	if v.dirty != 0 {
		v.scheduleUpdate()
	}
}

// Fail drops an outstanding request and schedules an update, which asks for the page again if its placeholders
// are still rendered
func (v *Virtualizer[T, E]) Fail(req PageRequest) {
	v.pages.Fail(req)
	v.dirty |= dirtyData
	v.scheduleUpdate()
}

// RequestPage asks for page even if it is past the known count, e.g. the first page of a list of unknown size
func (v *Virtualizer[T, E]) RequestPage(page int) {
	v.pages.Request(page)
}

// OutstandingPages returns the number of pages requested and not yet delivered or failed
func (v *Virtualizer[T, E]) OutstandingPages() int {
	return v.pages.Outstanding()
}

// Reset drops loaded items, outstanding requests and measurements, e.g. when a filter changes the data set.
// Late deliveries for requests made before the reset are discarded
func (v *Virtualizer[T, E]) Reset() {
	v.pages.Reset()
	v.mapper.ClearMeasurements()
	v.invalid = make(map[int]struct{})
	v.InvalidateAll()
}

// Teardown drops every slot. The Virtualizer can be used again afterwards and recreates slots as needed
func (v *Virtualizer[T, E]) Teardown() {
	v.pool.Clear()
	v.window = EmptyWindow
	v.rendered = EmptyWindow
	v.dirty = dirtyAll
}

// Pool returns the slot pool
func (v *Virtualizer[T, E]) Pool() *Pool[E] {
	return v.pool
}

// FirstVisibleIndex returns the first index in the viewport as of the last Update
func (v *Virtualizer[T, E]) FirstVisibleIndex() int {
	return v.window.First
}

// LastVisibleIndex returns the last index in the viewport as of the last Update, -1 when the list is empty
func (v *Virtualizer[T, E]) LastVisibleIndex() int {
	return v.window.Last
}

// Window returns the visible window as of the last Update
func (v *Virtualizer[T, E]) Window() Window {
	return v.window
}

// RenderedRange returns the window plus overscan as of the last Update
func (v *Virtualizer[T, E]) RenderedRange() Window {
	return v.rendered
}

// RenderedSlots returns the bound slots ordered by index
func (v *Virtualizer[T, E]) RenderedSlots() []*Slot[E] {
	return v.pool.BoundSlots()
}

// Err returns the error of the last Update, including deferred ones
func (v *Virtualizer[T, E]) Err() error {
	return v.err
}

// Update recomputes the window, binds slots to it, renders the slots that need it and queues page requests for
// placeholders. The only error is a slot factory failure; the update is retried on the next call.
//
// Called from inside a render callback, Update does not recurse: it schedules a deferred update instead
func (v *Virtualizer[T, E]) Update() error {
	if v.updating {
		v.dirty |= dirtyLayout
		v.scheduleUpdate()
		return nil
	}
	if v.dirty == 0 {
		return nil
	}

	flags := v.dirty
	v.dirty = 0
	v.updating = true
	defer func() { v.updating = false }()

	var err error
	for pass := 0; pass < maxLayoutPasses; pass++ {
		v.measuredDuringPass = false
		if err = v.recompute(); err != nil {
			break
		}
		if !v.measuredDuringPass {
			break
		}
	}

	if err != nil {
		v.log.Error().Err(err).Msg("update failed")
		v.dirty |= flags | dirtyLayout
		v.err = err
		return err
	}
	v.err = nil
	v.pendingScroll = nil

	if v.measuredDuringPass {
		// sizes had not settled within maxLayoutPasses
		v.dirty |= dirtyLayout
	}
	if v.dirty != 0 {
		v.scheduleUpdate()
	}
	return nil
}

func (v *Virtualizer[T, E]) recompute() error {
	if v.mapper.NeedsReconcile(v.opts.ReconcileEvery) {
		v.anchored(func() {
			if v.mapper.Reconcile() {
				v.log.Debug().Int("estimate", v.mapper.Estimate()).Msg("reconciled row size estimate")
			}
		})
	}

	if v.pendingScroll != nil {
		v.scrollOffset = ScrollTarget(v.mapper, v.scrollOffset, v.viewportSize, v.pendingScroll.index, v.pendingScroll.align)
	}
	v.scrollOffset = ClampScrollOffset(v.mapper, v.scrollOffset, v.viewportSize)
	window := ComputeWindow(v.mapper, v.scrollOffset, v.viewportSize)
	rendered := window.Expand(v.opts.Overscan, v.mapper.Count())

	indexes := rendered.Indexes()
	slots, hidden, err := v.pool.Reorder(indexes)
	if err != nil {
		// slots are still bound to the previous window
		return err
	}
	v.window, v.rendered = window, rendered
	for _, s := range hidden {
		if v.hideSlot != nil {
			v.hideSlot(s)
		}
	}

	for i, s := range slots {
		idx := indexes[i]
		_, invalid := v.invalid[idx]
		if s.rendered == idx && s.epoch == v.epoch && !invalid {
			continue
		}
		delete(v.invalid, idx)
		s.rendered = idx
		s.epoch = v.epoch
		if v.renderSlot != nil {
			item, loaded := v.pages.Item(idx)
			v.renderSlot(s, idx, item, loaded)
		}
	}
	for idx := range v.invalid {
		if !v.rendered.Contains(idx) {
			delete(v.invalid, idx)
		}
	}

	v.pages.EnsureLoaded(v.rendered.First, v.rendered.Last)
	return nil
}

func (v *Virtualizer[T, E]) scheduleUpdate() {
	if v.updateScheduled {
		return
	}
	v.updateScheduled = true
	v.opts.Scheduler.Schedule(func() {
		v.updateScheduled = false
		// error is kept in v.err for the host
		_ = v.Update()
	})
}

// anchored runs fn, which may change row sizes, and keeps the first visible row at the same place in the viewport
func (v *Virtualizer[T, E]) anchored(fn func()) {
	if v.window.Empty() || v.mapper.Count() == 0 {
		fn()
		return
	}
	anchor := min(v.window.First, v.mapper.Count()-1)
	delta := v.scrollOffset - v.mapper.OffsetOf(anchor)
	fn()
	delta = clampValMinMax(delta, 0, max(0, v.mapper.SizeOf(anchor)-1))
	v.scrollOffset = v.mapper.OffsetOf(anchor) + delta
}
