package virtualizer

import (
	"testing"
)

func TestMapper_Estimated(t *testing.T) {
	m := NewMapper(10, 10)
	tests := []struct {
		index, offset int
	}{
		{0, 0},
		{3, 30},
		{9, 90},
		{-1, 0},
		{99, 90},
	}
	for _, tt := range tests {
		if got := m.OffsetOf(tt.index); got != tt.offset {
			t.Errorf("OffsetOf(%d): expected %d, got %d", tt.index, tt.offset, got)
		}
	}
	if total := m.TotalSize(); total != 100 {
		t.Errorf("expected total 100, got %d", total)
	}
}

func TestMapper_MeasureMovesOnlyLaterRows(t *testing.T) {
	m := NewMapper(10, 10)
	before := []int{m.OffsetOf(0), m.OffsetOf(1), m.OffsetOf(2)}
	if !m.Measure(2, 25) {
		t.Fatalf("expected measure to change size")
	}
	if m.Measure(2, 25) {
		t.Errorf("expected same measure to be a no-op")
	}
	for i, want := range before {
		if got := m.OffsetOf(i); got != want {
			t.Errorf("OffsetOf(%d) moved from %d to %d", i, want, got)
		}
	}
	if got := m.OffsetOf(3); got != 45 {
		t.Errorf("expected OffsetOf(3) 45, got %d", got)
	}
	if got := m.TotalSize(); got != 115 {
		t.Errorf("expected total 115, got %d", got)
	}
	if got := m.SizeOf(2); got != 25 {
		t.Errorf("expected SizeOf(2) 25, got %d", got)
	}
	if !m.IsMeasured(2) || m.IsMeasured(3) {
		t.Errorf("expected only row 2 measured")
	}
}

func TestMapper_MeasureOutOfRange(t *testing.T) {
	m := NewMapper(3, 10)
	for _, idx := range []int{-1, 3, 100} {
		if m.Measure(idx, 5) {
			t.Errorf("expected Measure(%d) to be ignored", idx)
		}
	}
	if m.Measure(0, -1) {
		t.Errorf("expected negative size to be ignored")
	}
	if m.NumMeasured() != 0 {
		t.Errorf("expected nothing measured, got %d", m.NumMeasured())
	}
}

func TestMapper_IndexAt(t *testing.T) {
	m := NewMapper(10, 10)
	m.Measure(2, 25)
	m.Measure(5, 1)
	// offsets: 0 10 20 45 55 65 66 76 86 96, total 106
	tests := []struct {
		offset, index int
	}{
		{-5, 0},
		{0, 0},
		{9, 0},
		{10, 1},
		{44, 2},
		{45, 3},
		{64, 4},
		{65, 5},
		{66, 6},
		{95, 8},
		{96, 9},
		{1000, 9},
	}
	for _, tt := range tests {
		if got := m.IndexAt(tt.offset); got != tt.index {
			t.Errorf("IndexAt(%d): expected %d, got %d", tt.offset, tt.index, got)
		}
	}
}

func TestMapper_RoundTrip(t *testing.T) {
	m := NewMapper(500, 7)
	for i := 0; i < 500; i += 3 {
		m.Measure(i, 1+i%13)
	}
	for i := 0; i < 500; i++ {
		if got := m.IndexAt(m.OffsetOf(i)); got != i {
			t.Fatalf("IndexAt(OffsetOf(%d)) = %d", i, got)
		}
	}
}

func TestMapper_SetCountDropsMeasurements(t *testing.T) {
	m := NewMapper(10, 10)
	m.Measure(2, 25)
	m.Measure(5, 1)
	m.SetCount(4)
	if m.NumMeasured() != 1 {
		t.Errorf("expected 1 measurement kept, got %d", m.NumMeasured())
	}
	if got := m.TotalSize(); got != 55 {
		t.Errorf("expected total 55, got %d", got)
	}
	m.SetCount(10)
	if got := m.SizeOf(5); got != 10 {
		t.Errorf("expected dropped row to use estimate again, got %d", got)
	}
}

func TestMapper_Empty(t *testing.T) {
	m := NewMapper(0, 10)
	if m.OffsetOf(3) != 0 || m.IndexAt(30) != 0 || m.TotalSize() != 0 || m.SizeOf(0) != 0 {
		t.Errorf("expected zero values for an empty mapper")
	}
}

func TestMapper_Reconcile(t *testing.T) {
	m := NewMapper(100, 10)
	m.Measure(2, 25)
	if m.NeedsReconcile(2) {
		t.Errorf("expected no reconcile after 1 measurement")
	}
	m.Measure(5, 1)
	if !m.NeedsReconcile(2) {
		t.Errorf("expected reconcile after 2 measurements")
	}
	if m.NeedsReconcile(0) {
		t.Errorf("expected reconcile disabled for every <= 0")
	}
	if !m.Reconcile() {
		t.Fatalf("expected estimate to change")
	}
	if got := m.Estimate(); got != 13 {
		t.Errorf("expected mean estimate 13, got %d", got)
	}
	if m.NeedsReconcile(2) {
		t.Errorf("expected counter reset after reconcile")
	}
	if m.Reconcile() {
		t.Errorf("expected no change reconciling twice")
	}
	// measured rows keep their sizes
	if got := m.OffsetOf(3); got != 2*13+25 {
		t.Errorf("expected OffsetOf(3) %d, got %d", 2*13+25, got)
	}
}

func TestMapper_ClearMeasurements(t *testing.T) {
	m := NewMapper(10, 10)
	m.Measure(1, 50)
	m.ClearMeasurements()
	if m.TotalSize() != 100 || m.NumMeasured() != 0 {
		t.Errorf("expected estimate-only layout, got total %d with %d measured", m.TotalSize(), m.NumMeasured())
	}
}

func TestMapper_MatchesRunningSum(t *testing.T) {
	const n = 3000
	m := NewMapper(n, 4)
	sizes := make([]int, n)
	for i := range sizes {
		sizes[i] = 4
	}
	// measured rows spread past several growths of the prefix sums, zero sizes included
	for i := 0; i < n; i += 7 {
		sizes[i] = (i * 31) % 11
		m.Measure(i, sizes[i])
	}
	m.Measure(2999, 9)
	sizes[2999] = 9

	offset := 0
	for i := 0; i < n; i++ {
		if got := m.OffsetOf(i); got != offset {
			t.Fatalf("OffsetOf(%d): expected %d, got %d", i, offset, got)
		}
		if sizes[i] > 0 {
			if got := m.IndexAt(offset); got != i {
				t.Fatalf("IndexAt(%d): expected %d, got %d", offset, i, got)
			}
			if got := m.IndexAt(offset + sizes[i] - 1); got != i {
				t.Fatalf("IndexAt(%d): expected %d, got %d", offset+sizes[i]-1, i, got)
			}
		}
		offset += sizes[i]
	}
	if got := m.TotalSize(); got != offset {
		t.Errorf("expected total %d, got %d", offset, got)
	}

	m.SetEstimate(6)
	if got, want := m.OffsetOf(1), sizes[0]; got != want {
		t.Errorf("expected OffsetOf(1) %d after estimate change, got %d", want, got)
	}
	if got, want := m.OffsetOf(2), sizes[0]+6; got != want {
		t.Errorf("expected OffsetOf(2) %d after estimate change, got %d", want, got)
	}
}

func TestMapper_MeasureBeyondCoveredRows(t *testing.T) {
	m := NewMapper(1_000_000, 1)
	m.Measure(999_999, 5)
	m.Measure(3, 2)
	if got := m.TotalSize(); got != 1_000_005 {
		t.Errorf("expected total 1000005, got %d", got)
	}
	if got := m.IndexAt(4); got != 3 {
		t.Errorf("expected IndexAt(4) 3, got %d", got)
	}
	if got := m.IndexAt(1_000_000); got != 999_999 {
		t.Errorf("expected IndexAt(1000000) 999999, got %d", got)
	}
	m.SetCount(10)
	if got := m.TotalSize(); got != 11 {
		t.Errorf("expected total 11 after shrinking, got %d", got)
	}
}
