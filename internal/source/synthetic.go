package source

import (
	"context"
	"fmt"
	"github.com/google/uuid"
	"math/rand"
	"strings"
	"sync"
	"time"
)

var words = strings.Fields(`lorem ipsum dolor sit amet consectetur adipiscing elit sed do eiusmod tempor incididunt ut
labore et dolore magna aliqua enim ad minim veniam quis nostrud exercitation ullamco laboris nisi aliquip ex ea commodo
consequat duis aute irure in reprehenderit voluptate velit esse cillum eu fugiat nulla pariatur excepteur sint occaecat
cupidatat non proident sunt culpa qui officia deserunt mollit anim id est laborum`)

// SyntheticOptions configures a Synthetic source
type SyntheticOptions struct {
	Count int
	// Latency delays every page, simulating a remote backend
	Latency time.Duration
	Seed    int64
	// FailRate is the probability in [0, 1] that a page load returns ErrTransient
	FailRate float64
}

// Synthetic generates Count deterministic items of varying length. Item i always has the same ID and text for a
// given seed, so nothing but the filter cache is held in memory
type Synthetic struct {
	opts      SyntheticOptions
	namespace uuid.UUID

	mu          sync.Mutex
	rng         *rand.Rand
	lastFilter  string
	lastMatches []int
}

func NewSynthetic(opts SyntheticOptions) *Synthetic {
	opts.Count = max(0, opts.Count)
	return &Synthetic{
		opts:      opts,
		namespace: uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("vl-synthetic-%d", opts.Seed))),
		rng:       rand.New(rand.NewSource(opts.Seed)),
	}
}

func (s *Synthetic) Name() string {
	return fmt.Sprintf("synthetic (%d items)", s.opts.Count)
}

// Item returns the item at index of the unfiltered list
func (s *Synthetic) Item(index int) Item {
	return Item{
		ID:   uuid.NewSHA1(s.namespace, []byte(fmt.Sprint(index))).String(),
		Text: s.text(index),
	}
}

func (s *Synthetic) LoadPage(ctx context.Context, page, pageSize int, filter string) (Page, error) {
	if s.opts.Latency > 0 {
		select {
		case <-ctx.Done():
			return Page{}, ctx.Err()
		case <-time.After(s.opts.Latency):
		}
	} else if err := ctx.Err(); err != nil {
		return Page{}, err
	}
	if s.shouldFail() {
		return Page{}, fmt.Errorf("page %d: %w", page, ErrTransient)
	}

	if filter == "" {
		start, end, err := pageBounds(page, pageSize, s.opts.Count)
		if err != nil {
			return Page{}, err
		}
		items := make([]Item, 0, end-start)
		for i := start; i < end; i++ {
			items = append(items, s.Item(i))
		}
		return Page{Items: items, Total: s.opts.Count}, nil
	}

	matches, err := s.matching(ctx, filter)
	if err != nil {
		return Page{}, err
	}
	start, end, err := pageBounds(page, pageSize, len(matches))
	if err != nil {
		return Page{}, err
	}
	items := make([]Item, 0, end-start)
	for _, idx := range matches[start:end] {
		items = append(items, s.Item(idx))
	}
	return Page{Items: items, Total: len(matches)}, nil
}

func (s *Synthetic) shouldFail() bool {
	if s.opts.FailRate <= 0 {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64() < s.opts.FailRate
}

func (s *Synthetic) matching(ctx context.Context, filter string) ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if filter == s.lastFilter && s.lastMatches != nil {
		return s.lastMatches, nil
	}
	matches := []int{}
	for i := 0; i < s.opts.Count; i++ {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if strings.Contains(s.text(i), filter) {
			matches = append(matches, i)
		}
	}
	s.lastFilter, s.lastMatches = filter, matches
	return matches, nil
}

// text derives the words of item index from a splitmix64 stream seeded by seed and index
func (s *Synthetic) text(index int) string {
	state := uint64(s.opts.Seed)*0x9E3779B97F4A7C15 + uint64(index)
	next := func() uint64 {
		state += 0x9E3779B97F4A7C15
		z := state
		z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
		z = (z ^ (z >> 27)) * 0x94D049BB133111EB
		return z ^ (z >> 31)
	}

	// mostly short rows with the occasional long one, so wrapped heights vary
	n := 3 + int(next()%12)
	if next()%10 == 0 {
		n += 20 + int(next()%60)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d:", index))
	for i := 0; i < n; i++ {
		sb.WriteByte(' ')
		sb.WriteString(words[next()%uint64(len(words))])
	}
	return sb.String()
}

var _ Source = (*Synthetic)(nil)
