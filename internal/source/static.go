package source

import (
	"context"
	"fmt"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
	"os"
	"strings"
	"sync"
)

type itemFile struct {
	Items []Item `yaml:"items"`
}

// Static serves items held in memory, e.g. read from a YAML file
type Static struct {
	name  string
	items []Item

	mu          sync.Mutex
	lastFilter  string
	lastMatches []int
}

// NewStatic creates a Static source. Items without an ID get a random one
func NewStatic(name string, items []Item) *Static {
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = uuid.NewString()
		}
	}
	return &Static{name: name, items: items}
}

// LoadYAML reads a file of the form
//
//	items:
//	  - text: first row
//	  - id: custom-id
//	    text: second row
func LoadYAML(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var f itemFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(f.Items) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoItems)
	}
	return NewStatic(path, f.Items), nil
}

func (s *Static) Name() string {
	return s.name
}

func (s *Static) LoadPage(ctx context.Context, page, pageSize int, filter string) (Page, error) {
	if err := ctx.Err(); err != nil {
		return Page{}, err
	}
	if filter == "" {
		start, end, err := pageBounds(page, pageSize, len(s.items))
		if err != nil {
			return Page{}, err
		}
		items := make([]Item, end-start)
		copy(items, s.items[start:end])
		return Page{Items: items, Total: len(s.items)}, nil
	}

	matches := s.matching(filter)
	start, end, err := pageBounds(page, pageSize, len(matches))
	if err != nil {
		return Page{}, err
	}
	items := make([]Item, 0, end-start)
	for _, idx := range matches[start:end] {
		items = append(items, s.items[idx])
	}
	return Page{Items: items, Total: len(matches)}, nil
}

func (s *Static) matching(filter string) []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if filter == s.lastFilter && s.lastMatches != nil {
		return s.lastMatches
	}
	matches := []int{}
	for i := range s.items {
		if strings.Contains(s.items[i].Text, filter) {
			matches = append(matches, i)
		}
	}
	s.lastFilter, s.lastMatches = filter, matches
	return matches
}

var _ Source = (*Static)(nil)
