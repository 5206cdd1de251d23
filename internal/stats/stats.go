package stats

import (
	"fmt"
	"github.com/shirou/gopsutil/v3/process"
	"os"
)

// Sample is a snapshot of the process' resource use
type Sample struct {
	RSS uint64
}

// Sampler reads resource use of the current process
type Sampler struct {
	proc *process.Process
}

func NewSampler() (*Sampler, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, fmt.Errorf("open process: %w", err)
	}
	return &Sampler{proc: proc}, nil
}

func (s *Sampler) Sample() (Sample, error) {
	mem, err := s.proc.MemoryInfo()
	if err != nil {
		return Sample{}, fmt.Errorf("read memory: %w", err)
	}
	return Sample{RSS: mem.RSS}, nil
}

// String formats the sample for the footer, e.g. "rss 12.3MiB"
func (s Sample) String() string {
	return "rss " + FormatBytes(s.RSS)
}

func FormatBytes(b uint64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%dB", b)
	}
	div, exp := uint64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
