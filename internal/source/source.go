package source

import (
	"context"
	"errors"
)

var (
	ErrInvalidPage = errors.New("invalid page")
	ErrNoItems     = errors.New("no items")
	// ErrTransient is returned by sources that simulate flaky backends. The page can be asked for again
	ErrTransient = errors.New("transient load failure")
)

// Item is one logical row of the list
type Item struct {
	// ID is stable across pages and filters, so selection can follow an item
	ID   string `yaml:"id"`
	Text string `yaml:"text"`
}

// Page is the answer to one page request. Total is the number of items matching the filter, or -1 if unknown
type Page struct {
	Items []Item
	Total int
}

// Source loads pages of items. Implementations must be safe to call from multiple goroutines, since every page
// request runs in its own command
type Source interface {
	Name() string
	LoadPage(ctx context.Context, page, pageSize int, filter string) (Page, error)
}

func pageBounds(page, pageSize, total int) (start, end int, err error) {
	if page < 0 || pageSize <= 0 {
		return 0, 0, ErrInvalidPage
	}
	start = min(page*pageSize, total)
	end = min(start+pageSize, total)
	return start, end, nil
}
