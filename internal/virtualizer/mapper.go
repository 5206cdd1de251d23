package virtualizer

import (
	"github.com/emirpasic/gods/trees/redblacktree"
)

// Mapper converts between item indexes and pixel offsets along the scroll axis.
//
// Rows that were never measured take the estimate. Measured sizes live in an ordered tree keyed by index, with
// Fenwick sums of measured sizes and measured rows alongside, so offsets and index lookups are O(log n) whatever
// the estimate is. Measuring row k moves the offsets of rows after k and never of rows before it
type Mapper struct {
	count    int
	estimate int

	// measured maps index -> measured size
	measured *redblacktree.Tree

	// measuredTotal is the sum of all measured sizes
	measuredTotal int

	// sums and counts are 1-indexed Fenwick trees over measured sizes and measured rows, covering rows
	// [0, len(sums)-1). Rows past that are unmeasured
	sums   []int
	counts []int

	// sinceReconcile counts size changes since the last Reconcile
	sinceReconcile int
}

// NewMapper creates a Mapper for count rows of estimated size estimate
func NewMapper(count, estimate int) *Mapper {
	return &Mapper{
		count:    max(0, count),
		estimate: max(1, estimate),
		measured: redblacktree.NewWithIntComparator(),
	}
}

// Count returns the number of rows
func (m *Mapper) Count() int {
	return m.count
}

// Estimate returns the size used for unmeasured rows
func (m *Mapper) Estimate() int {
	return m.estimate
}

// SetEstimate sets the size used for unmeasured rows
func (m *Mapper) SetEstimate(estimate int) {
	m.estimate = max(1, estimate)
}

// SetCount sets the number of rows, forgetting measurements of rows that no longer exist
func (m *Mapper) SetCount(count int) {
	count = max(0, count)
	for count < m.count {
		node, found := m.measured.Ceiling(count)
		if !found {
			break
		}
		m.measuredTotal -= node.Value.(int)
		m.add(node.Key.(int), -node.Value.(int), -1)
		m.measured.Remove(node.Key)
	}
	m.count = count
}

// ClearMeasurements forgets every measured size, e.g. after the row width changed
func (m *Mapper) ClearMeasurements() {
	m.measured.Clear()
	m.measuredTotal = 0
	m.sums = nil
	m.counts = nil
	m.sinceReconcile = 0
}

// NumMeasured returns the number of measured rows
func (m *Mapper) NumMeasured() int {
	return m.measured.Size()
}

// Measure records the actual size of the row at index. Returns true if the stored size changed
func (m *Mapper) Measure(index, size int) bool {
	if index < 0 || index >= m.count || size < 0 {
		return false
	}
	if prev, found := m.measured.Get(index); found {
		if prev.(int) == size {
			return false
		}
		m.measuredTotal -= prev.(int)
		m.add(index, size-prev.(int), 0)
	} else {
		m.add(index, size, 1)
	}
	m.measured.Put(index, size)
	m.measuredTotal += size
	m.sinceReconcile++
	return true
}

// IsMeasured returns true if the row at index has a measured size
func (m *Mapper) IsMeasured(index int) bool {
	_, found := m.measured.Get(index)
	return found
}

// SizeOf returns the measured or estimated size of the row at index, clamped into range
func (m *Mapper) SizeOf(index int) int {
	if m.count == 0 {
		return 0
	}
	index = clampValMinMax(index, 0, m.count-1)
	if size, found := m.measured.Get(index); found {
		return size.(int)
	}
	return m.estimate
}

// OffsetOf returns the start offset of the row at index, clamped into range
func (m *Mapper) OffsetOf(index int) int {
	if m.count == 0 {
		return 0
	}
	return m.start(clampValMinMax(index, 0, m.count-1))
}

// TotalSize returns the size of all rows
func (m *Mapper) TotalSize() int {
	return m.start(m.count)
}

// start returns the start offset of row index, where index may equal count
func (m *Mapper) start(index int) int {
	sum, n := m.prefix(min(index, m.capacity()))
	return index*m.estimate + sum - n*m.estimate
}

// IndexAt returns the index of the row containing offset, clamped into range
func (m *Mapper) IndexAt(offset int) int {
	if m.count == 0 || offset < 0 {
		return 0
	}

	// descend the Fenwick trees to the last row in the covered range starting at or before offset
	pos, acc := 0, 0
	capacity := m.capacity()
	for step := highestPowerOfTwo(capacity); step > 0; step >>= 1 {
		next := pos + step
		if next > capacity {
			continue
		}
		span := step*m.estimate + m.sums[next] - m.counts[next]*m.estimate
		if acc+span <= offset {
			pos = next
			acc += span
		}
	}
	if pos < capacity {
		return min(m.count-1, pos)
	}
	return min(m.count-1, pos+(offset-acc)/m.estimate)
}

func (m *Mapper) capacity() int {
	return max(0, len(m.sums)-1)
}

// prefix returns the summed size and number of measured rows in [0, index)
func (m *Mapper) prefix(index int) (sum, n int) {
	for k := index; k > 0; k -= k & -k {
		sum += m.sums[k]
		n += m.counts[k]
	}
	return sum, n
}

// add adds size and n to row index in the Fenwick trees, growing them to cover index
func (m *Mapper) add(index, size, n int) {
	if index >= m.capacity() {
		m.grow(index + 1)
	}
	for k := index + 1; k < len(m.sums); k += k & -k {
		m.sums[k] += size
		m.counts[k] += n
	}
}

// grow rebuilds the Fenwick trees to cover at least rows [0, need) from the measured tree
func (m *Mapper) grow(need int) {
	capacity := max(64, 2*m.capacity(), need)
	m.sums = make([]int, capacity+1)
	m.counts = make([]int, capacity+1)
	it := m.measured.Iterator()
	for it.Next() {
		k := it.Key().(int) + 1
		m.sums[k] += it.Value().(int)
		m.counts[k]++
	}
	for k := 1; k <= capacity; k++ {
		if parent := k + (k & -k); parent <= capacity {
			m.sums[parent] += m.sums[k]
			m.counts[parent] += m.counts[k]
		}
	}
}

func highestPowerOfTwo(n int) int {
	p := 0
	for step := 1; step <= n; step <<= 1 {
		p = step
	}
	return p
}

// NeedsReconcile returns true if at least every sizes changed since the last Reconcile. every <= 0 disables it
func (m *Mapper) NeedsReconcile(every int) bool {
	return every > 0 && m.sinceReconcile >= every
}

// Reconcile replaces the estimate with the mean measured size so that the estimated part of the list stops
// drifting from what rows actually measure. Returns true if the estimate changed
func (m *Mapper) Reconcile() bool {
	m.sinceReconcile = 0
	n := m.measured.Size()
	if n == 0 {
		return false
	}
	mean := max(1, (m.measuredTotal+n/2)/n)
	if mean == m.estimate {
		return false
	}
	m.estimate = mean
	return true
}
