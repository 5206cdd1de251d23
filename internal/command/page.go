package command

import (
	"context"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/robinovitch61/vl/internal/source"
	"github.com/robinovitch61/vl/internal/virtualizer"
)

// PageLoadedMsg answers one page request. Err is set if the source failed
type PageLoadedMsg struct {
	Req    virtualizer.PageRequest
	Filter string
	Page   source.Page
	Err    error
}

// LoadPageCmd loads the page asked for by req from src. Cancelling ctx abandons the load, e.g. when the filter changes
func LoadPageCmd(ctx context.Context, src source.Source, req virtualizer.PageRequest, filter string) tea.Cmd {
	return func() tea.Msg {
		page, err := src.LoadPage(ctx, req.Page, req.PageSize, filter)
		return PageLoadedMsg{Req: req, Filter: filter, Page: page, Err: err}
	}
}
