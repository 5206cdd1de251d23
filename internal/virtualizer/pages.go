package virtualizer

import (
	"github.com/rs/zerolog"
	"sort"
)

// PageRequest asks the host's data source for one page of items. Deliver or Fail it with the same value
type PageRequest struct {
	Page     int
	PageSize int

	generation uint64
}

// Start returns the index of the first item of the page
func (r PageRequest) Start() int {
	return r.Page * r.PageSize
}

// Pages stores loaded items by index and coordinates page requests for placeholders.
//
// Requests are deduplicated by page: a page is requested at most once until it is delivered, failed, or dropped.
// Requests are not emitted synchronously. EnsureLoaded queues pages and schedules a single flush on the
// Scheduler, which coalesces bursts from one frame and keeps a host that answers an empty page by asking again
// from looping re-entrantly
type Pages[T any] struct {
	pageSize   int
	count      int
	generation uint64

	items map[int]T

	// openEnd is true while the total is unknown and the last page delivered was full, so more items may follow
	openEnd bool

	// requested holds the outstanding pages, true once emitted to the host
	requested map[int]bool
	queue     []int

	flushScheduled bool
	scheduler      Scheduler
	onRequest      func(PageRequest)
	log            zerolog.Logger
}

// NewPages creates an empty store for pages of pageSize items
func NewPages[T any](pageSize int, scheduler Scheduler, log zerolog.Logger) *Pages[T] {
	return &Pages[T]{
		pageSize:  max(1, pageSize),
		items:     make(map[int]T),
		requested: make(map[int]bool),
		scheduler: scheduler,
		log:       log,
	}
}

// OnRequest sets the function receiving page requests at flush time
func (p *Pages[T]) OnRequest(fn func(PageRequest)) {
	p.onRequest = fn
}

// PageSize returns the number of items per page
func (p *Pages[T]) PageSize() int {
	return p.pageSize
}

// Count returns the number of items, loaded or not
func (p *Pages[T]) Count() int {
	return p.count
}

// Generation returns the current data generation. Reset starts a new one
func (p *Pages[T]) Generation() uint64 {
	return p.generation
}

// OpenEnd returns true if the total is unknown and more items may follow the last one loaded
func (p *Pages[T]) OpenEnd() bool {
	return p.openEnd
}

// Outstanding returns the number of requested pages not yet delivered or failed
func (p *Pages[T]) Outstanding() int {
	return len(p.requested)
}

// IsRequested returns true if page has an outstanding request
func (p *Pages[T]) IsRequested(page int) bool {
	_, ok := p.requested[page]
	return ok
}

// Item returns the item at index and whether it is loaded. Unloaded indexes are placeholders
func (p *Pages[T]) Item(index int) (T, bool) {
	item, ok := p.items[index]
	return item, ok
}

// NumLoaded returns the number of loaded items
func (p *Pages[T]) NumLoaded() int {
	return len(p.items)
}

// SetCount sets the number of items. Items and outstanding requests past the end are dropped, so their late
// deliveries are discarded. The count becomes known
func (p *Pages[T]) SetCount(count int) {
	p.openEnd = false
	p.setCount(count)
}

func (p *Pages[T]) setCount(count int) {
	count = max(0, count)
	if count < p.count {
		for idx := range p.items {
			if idx >= count {
				delete(p.items, idx)
			}
		}
		for page := range p.requested {
			if page*p.pageSize >= count {
				delete(p.requested, page)
			}
		}
	}
	p.count = count
}

// SetItems replaces all data with a fully loaded list
func (p *Pages[T]) SetItems(items []T) {
	p.Reset()
	p.count = len(items)
	for i := range items {
		p.items[i] = items[i]
	}
}

// SetItem replaces the item at index, which must be in range
func (p *Pages[T]) SetItem(index int, item T) bool {
	if index < 0 || index >= p.count {
		return false
	}
	p.items[index] = item
	return true
}

// SetPageSize changes the page size. Since page numbers change meaning, outstanding requests are dropped
func (p *Pages[T]) SetPageSize(pageSize int) {
	pageSize = max(1, pageSize)
	if pageSize == p.pageSize {
		return
	}
	p.pageSize = pageSize
	p.generation++
	p.requested = make(map[int]bool)
	p.queue = nil
}

// Reset drops all items and outstanding requests and starts a new generation. Deliveries for requests of older
// generations are discarded
func (p *Pages[T]) Reset() {
	p.generation++
	p.openEnd = false
	p.items = make(map[int]T)
	p.requested = make(map[int]bool)
	p.queue = nil
}

// EnsureLoaded queues a request for each page holding a placeholder in [first, last] that is not already requested.
// When the range reaches the last item of a list with an open end, the page after it is requested too
func (p *Pages[T]) EnsureLoaded(first, last int) {
	first = max(0, first)
	last = min(p.count-1, last)
	for idx := first; idx <= last; idx++ {
		if _, ok := p.items[idx]; ok {
			continue
		}
		page := idx / p.pageSize
		p.Request(page)
		// rest of this page is covered either way
		idx = (page+1)*p.pageSize - 1
	}
	if p.openEnd && first <= last && last == p.count-1 {
		p.Request(p.count / p.pageSize)
	}
}

// Request queues a request for page unless it is already requested. Unlike EnsureLoaded it does not check the
// page against the count, so a host can load the first page of a list whose size it does not know yet
func (p *Pages[T]) Request(page int) {
	if page < 0 {
		return
	}
	if _, ok := p.requested[page]; ok {
		return
	}
	p.requested[page] = false
	p.queue = append(p.queue, page)
	p.scheduleFlush()
}

func (p *Pages[T]) scheduleFlush() {
	if p.flushScheduled || p.scheduler == nil {
		return
	}
	p.flushScheduled = true
	p.scheduler.Schedule(p.flush)
}

// flush emits every queued request that is still outstanding
func (p *Pages[T]) flush() {
	p.flushScheduled = false
	queue := p.queue
	p.queue = nil
	sort.Ints(queue)
	for _, page := range queue {
		emitted, ok := p.requested[page]
		if !ok || emitted {
			continue
		}
		p.requested[page] = true
		req := PageRequest{Page: page, PageSize: p.pageSize, generation: p.generation}
		p.log.Debug().Int("page", page).Int("page_size", p.pageSize).Msg("requesting page")
		if p.onRequest != nil {
			p.onRequest(req)
		}
	}
}

// Deliver merges the items of a requested page. total replaces the item count when >= 0. When total < 0, a page
// shorter than the page size ends the list, and a full one that reaches the end extends it and leaves the end open
// for EnsureLoaded to ask for the next page.
//
// Returns the range of indexes that received items and false if the delivery was discarded: the request is from
// an older generation, was dropped by SetCount, or its page is past the end of the list
func (p *Pages[T]) Deliver(req PageRequest, items []T, total int) (Window, bool) {
	if req.generation != p.generation {
		p.log.Debug().Int("page", req.Page).Msg("discarding page from previous generation")
		return EmptyWindow, false
	}
	if _, ok := p.requested[req.Page]; !ok {
		p.log.Debug().Int("page", req.Page).Msg("discarding page that is no longer requested")
		return EmptyWindow, false
	}
	delete(p.requested, req.Page)

	start := req.Start()
	end := start + len(items)
	switch {
	case total >= 0:
		p.SetCount(total)
	case len(items) < req.PageSize:
		p.SetCount(end)
	case end >= p.count:
		p.setCount(end)
		p.openEnd = true
	}

	if start >= p.count {
		p.log.Debug().Int("page", req.Page).Int("count", p.count).Msg("discarding page past end of list")
		return EmptyWindow, false
	}
	end = min(end, p.count)
	for i := start; i < end; i++ {
		p.items[i] = items[i-start]
	}
	if end == start {
		return EmptyWindow, true
	}
	return Window{First: start, Last: end - 1}, true
}

// Fail drops an outstanding request so that a later EnsureLoaded asks for the page again
func (p *Pages[T]) Fail(req PageRequest) {
	if req.generation != p.generation {
		return
	}
	delete(p.requested, req.Page)
}
