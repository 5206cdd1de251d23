package virtualizer

// Window is the contiguous range of indexes intersecting the viewport. An empty list has the empty window {0, -1}
type Window struct {
	First int
	Last  int
}

// EmptyWindow is the window of a list with no rows
var EmptyWindow = Window{First: 0, Last: -1}

// Empty returns true if the window holds no index
func (w Window) Empty() bool {
	return w.Last < w.First
}

// Len returns the number of indexes in the window
func (w Window) Len() int {
	if w.Empty() {
		return 0
	}
	return w.Last - w.First + 1
}

// Contains returns true if index is in the window
func (w Window) Contains(index int) bool {
	return !w.Empty() && w.First <= index && index <= w.Last
}

// Expand grows the window by n on each side, clamped to [0, count-1]
func (w Window) Expand(n, count int) Window {
	if w.Empty() || count == 0 {
		return EmptyWindow
	}
	return Window{
		First: max(0, w.First-n),
		Last:  min(count-1, w.Last+n),
	}
}

// Indexes returns every index in the window in ascending order
func (w Window) Indexes() []int {
	res := make([]int, 0, w.Len())
	for i := w.First; i <= w.Last; i++ {
		res = append(res, i)
	}
	return res
}

// ComputeWindow returns the rows intersecting [scrollOffset, scrollOffset+viewportSize). At least one row is
// included when the list is not empty
func ComputeWindow(m *Mapper, scrollOffset, viewportSize int) Window {
	count := m.Count()
	if count == 0 {
		return EmptyWindow
	}
	scrollOffset = max(0, scrollOffset)
	end := scrollOffset + max(0, viewportSize)

	first := m.IndexAt(scrollOffset)
	last := first
	pos := m.OffsetOf(first) + m.SizeOf(first)
	for last+1 < count && pos < end {
		last++
		pos += m.SizeOf(last)
	}
	return Window{First: first, Last: last}
}

// Align controls where ScrollToIndex puts the target row
type Align int

const (
	// AlignAuto scrolls the minimal amount needed to show the row fully, and not at all if it already is
	AlignAuto Align = iota
	// AlignStart puts the row at the top of the viewport
	AlignStart
	// AlignEnd puts the row at the bottom of the viewport
	AlignEnd
	// AlignCenter centers the row in the viewport
	AlignCenter
)

// MaxScrollOffset returns the largest scroll offset that still fills the viewport
func MaxScrollOffset(m *Mapper, viewportSize int) int {
	return max(0, m.TotalSize()-max(0, viewportSize))
}

// ClampScrollOffset clamps offset into [0, MaxScrollOffset]
func ClampScrollOffset(m *Mapper, offset, viewportSize int) int {
	return clampValMinMax(offset, 0, MaxScrollOffset(m, viewportSize))
}

// ScrollTarget returns the scroll offset that brings the row at index into view from current, per align.
// index is clamped into range
func ScrollTarget(m *Mapper, current, viewportSize, index int, align Align) int {
	if m.Count() == 0 {
		return 0
	}
	index = clampValMinMax(index, 0, m.Count()-1)
	top := m.OffsetOf(index)
	size := m.SizeOf(index)
	bottom := top + size

	var target int
	switch align {
	case AlignStart:
		target = top
	case AlignEnd:
		target = bottom - viewportSize
	case AlignCenter:
		target = top - (viewportSize-size)/2
	default:
		switch {
		case top >= current && bottom <= current+viewportSize:
			// fully visible
			return current
		case top < current || size >= viewportSize:
			// above the viewport, or too tall to fit: show its start
			target = top
		default:
			// below: bottom edge of the row at the bottom of the viewport
			target = bottom - viewportSize
		}
	}
	return ClampScrollOffset(m, target, viewportSize)
}
