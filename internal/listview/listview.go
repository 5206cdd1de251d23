package listview

import (
	"context"
	"errors"
	"fmt"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/robinovitch61/vl/internal/command"
	"github.com/robinovitch61/vl/internal/constants"
	"github.com/robinovitch61/vl/internal/dev"
	"github.com/robinovitch61/vl/internal/keymap"
	"github.com/robinovitch61/vl/internal/message"
	"github.com/robinovitch61/vl/internal/source"
	"github.com/robinovitch61/vl/internal/style"
	"github.com/robinovitch61/vl/internal/util"
	"github.com/robinovitch61/vl/internal/virtualizer"
	"strings"
	"time"
)

// Terminology:
// - row: one item of the source, rendered to one or more lines
// - line: a row of terminal cells
// - window: the rows intersecting the viewport, as computed by the virtualizer
//
// Rows are sized in lines. Unwrapped rows are one line; wrapped rows report their actual height after rendering,
// which moves the rows after them without moving the ones on screen.

// State is the interaction state of the list. Rendering reads it, nothing else writes it
type State struct {
	SelectedIndex int
	Focused       bool
	Wrap          bool
}

// PageFailedMsg reports a page the source could not load. The page is asked for again on a later frame
type PageFailedMsg struct {
	Page int
	Err  error
}

// Model is a list of any length backed by a source.Source. Only the rows in and near the viewport are rendered,
// and only the pages holding them are loaded
type Model struct {
	KeyMap keymap.KeyMap

	src    source.Source
	rt     *runtime
	state  State
	filter string

	width, height int
	footerSuffix  string
}

// runtime is shared by copies of Model, since the virtualizer calls back into it
type runtime struct {
	virt   *virtualizer.Virtualizer[source.Item, *Row]
	params renderParams

	ctx    context.Context
	cancel context.CancelFunc

	requests       []virtualizer.PageRequest
	frameScheduled bool

	// followID is the item the selection moves to once a page holding it arrives, after a filter change
	followID string
}

func New(src source.Source, km keymap.KeyMap, opts virtualizer.Options, wrapText bool) Model {
	rt := &runtime{}
	rt.virt = virtualizer.New[source.Item, *Row](func() (*Row, error) {
		return &Row{}, nil
	}, opts)
	rt.virt.OnRenderSlot(rt.render)
	rt.virt.OnRequestPage(func(req virtualizer.PageRequest) {
		rt.requests = append(rt.requests, req)
	})
	rt.virt.OnHideSlot(func(slot *virtualizer.Slot[*Row]) {
		slot.Element.Lines = nil
	})
	rt.ctx, rt.cancel = context.WithCancel(context.Background())

	return Model{
		KeyMap: km,
		src:    src,
		rt:     rt,
		state:  State{Focused: true, Wrap: wrapText},
	}
}

func (rt *runtime) render(slot *virtualizer.Slot[*Row], index int, item source.Item, loaded bool) {
	row := slot.Element
	row.Item = item
	row.Loaded = loaded
	row.Lines = rt.params.lines(index, item, loaded)
	rt.virt.Measure(index, lipgloss.Height(strings.Join(row.Lines, "\n")))
}

// Init starts loading the first page
func (m Model) Init() tea.Cmd {
	return m.reload()
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	dev.DebugUpdateMsg("ListView", msg)
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case message.FrameMsg:
		m.rt.frameScheduled = false
		m.rt.params = renderParams{width: m.width, state: m.state}
		m.rt.virt.Flush()
		cmds = append(cmds, m.takeLoadCmds()...)

	case command.PageLoadedMsg:
		if msg.Filter != m.filter {
			return m, nil
		}
		if msg.Err != nil {
			if errors.Is(msg.Err, context.Canceled) {
				return m, nil
			}
			m.rt.virt.Fail(msg.Req)
			if m.rt.virt.ItemCount() == 0 {
				// nothing is rendered yet to ask for the first page again
				m.rt.virt.RequestPage(msg.Req.Page)
			}
			err := msg.Err
			page := msg.Req.Page
			cmds = append(cmds, func() tea.Msg { return PageFailedMsg{Page: page, Err: err} })
			break
		}
		m.rt.virt.Deliver(msg.Req, msg.Page.Items, msg.Page.Total)
		m.followSelection(msg.Req, msg.Page.Items)

	case tea.KeyMsg:
		var cmd tea.Cmd
		m, cmd = m.handleKeyMsg(msg)
		cmds = append(cmds, cmd)
	}

	cmds = append(cmds, m.sync())
	return m, tea.Batch(cmds...)
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (Model, tea.Cmd) {
	visible := max(1, m.rt.virt.Window().Len())
	viewportSize := m.rt.virt.ViewportSize()

	switch {
	case key.Matches(msg, m.KeyMap.Up):
		m.setSelection(m.state.SelectedIndex-1, virtualizer.AlignAuto)

	case key.Matches(msg, m.KeyMap.Down):
		m.setSelection(m.state.SelectedIndex+1, virtualizer.AlignAuto)

	case key.Matches(msg, m.KeyMap.HalfPageUp):
		m.rt.virt.ScrollBy(-max(1, viewportSize/2))
		m.setSelection(m.state.SelectedIndex-max(1, visible/2), virtualizer.AlignAuto)

	case key.Matches(msg, m.KeyMap.HalfPageDown):
		m.rt.virt.ScrollBy(max(1, viewportSize/2))
		m.setSelection(m.state.SelectedIndex+max(1, visible/2), virtualizer.AlignAuto)

	case key.Matches(msg, m.KeyMap.PageUp):
		m.rt.virt.ScrollBy(-viewportSize)
		m.setSelection(m.state.SelectedIndex-visible, virtualizer.AlignAuto)

	case key.Matches(msg, m.KeyMap.PageDown):
		m.rt.virt.ScrollBy(viewportSize)
		m.setSelection(m.state.SelectedIndex+visible, virtualizer.AlignAuto)

	case key.Matches(msg, m.KeyMap.Top):
		m.setSelection(0, virtualizer.AlignStart)

	case key.Matches(msg, m.KeyMap.Bottom):
		m.setSelection(m.rt.virt.ItemCount()-1, virtualizer.AlignEnd)

	case key.Matches(msg, m.KeyMap.Wrap):
		m.SetWrap(!m.state.Wrap)

	case key.Matches(msg, m.KeyMap.Copy):
		if item, ok := m.SelectedItem(); ok {
			return m, command.CopyContentToClipboardCmd(item.Text)
		}
	}
	return m, nil
}

func (m Model) View() string {
	viewportSize := m.rt.virt.ViewportSize()
	lines := m.visibleLines(viewportSize)
	for len(lines) < viewportSize {
		lines = append(lines, "")
	}
	return strings.Join(append(lines, m.footer()), "\n")
}

func (m Model) visibleLines(viewportSize int) []string {
	virt := m.rt.virt
	w := virt.Window()
	if w.Empty() {
		if virt.OutstandingPages() > 0 || virt.Pending() {
			return []string{style.Placeholder.Render(constants.PlaceholderText)}
		}
		return []string{style.Faint.Render("no items")}
	}

	var lines []string
	for idx := w.First; idx <= w.Last; idx++ {
		if slot := virt.Pool().SlotFor(idx); slot != nil {
			lines = append(lines, slot.Element.Lines...)
		}
	}
	skip := min(max(0, virt.ScrollOffset()-virt.OffsetOf(w.First)), len(lines))
	lines = lines[skip:]
	return lines[:min(len(lines), viewportSize)]
}

func (m Model) footer() string {
	virt := m.rt.virt
	position := "0/0"
	if w := virt.Window(); !w.Empty() {
		position = fmt.Sprintf("%d-%d/%d", w.First+1, w.Last+1, virt.ItemCount())
	}
	var right []string
	if n := virt.OutstandingPages(); n > 0 {
		right = append(right, fmt.Sprintf("loading %d page(s)", n))
	}
	if m.footerSuffix != "" {
		right = append(right, m.footerSuffix)
	}
	return style.Footer.Render(util.JoinWithEqualSpacing(m.width, position, strings.Join(right, "  ")))
}

// SetSize sets the size of the list including its footer line
func (m *Model) SetSize(width, height int) {
	if width != m.width {
		// wrapped heights depend on the width
		m.rt.virt.ClearMeasurements()
	}
	m.width, m.height = width, height
	m.rt.virt.SetViewportSize(max(0, height-1))
}

// SetFilter reloads the list with only the items matching filter. The selected item stays selected if it matches
func (m *Model) SetFilter(filter string) tea.Cmd {
	if filter == m.filter {
		return nil
	}
	if item, ok := m.SelectedItem(); ok {
		m.rt.followID = item.ID
	}
	m.rt.cancel()
	m.rt.ctx, m.rt.cancel = context.WithCancel(context.Background())
	m.filter = filter
	m.state.SelectedIndex = 0
	m.rt.virt.SetScrollOffset(0)
	return m.reload()
}

// SetFocused changes how the selected row is highlighted
func (m *Model) SetFocused(focused bool) tea.Cmd {
	if focused == m.state.Focused {
		return nil
	}
	m.state.Focused = focused
	m.rt.virt.Invalidate(m.state.SelectedIndex)
	return m.sync()
}

func (m *Model) SetWrap(wrapText bool) {
	if wrapText == m.state.Wrap {
		return
	}
	m.state.Wrap = wrapText
	m.rt.virt.ClearMeasurements()
}

// SetFooterSuffix shows s at the right of the footer
func (m *Model) SetFooterSuffix(s string) {
	m.footerSuffix = s
}

func (m Model) State() State {
	return m.state
}

func (m Model) Filter() string {
	return m.filter
}

// Count returns the number of items matching the filter, as last reported by the source
func (m Model) Count() int {
	return m.rt.virt.ItemCount()
}

func (m Model) Window() virtualizer.Window {
	return m.rt.virt.Window()
}

func (m Model) OutstandingPages() int {
	return m.rt.virt.OutstandingPages()
}

// PoolSize returns the number of pooled row elements, which stays bounded by the viewport however long the list
func (m Model) PoolSize() int {
	return m.rt.virt.Pool().Len()
}

// VisibleRows returns the text of the loaded items in the window
func (m Model) VisibleRows() []string {
	var rows []string
	w := m.rt.virt.Window()
	for idx := w.First; idx <= w.Last; idx++ {
		if item, ok := m.rt.virt.Item(idx); ok {
			rows = append(rows, item.Text)
		}
	}
	return rows
}

// SelectedItem returns the selected item, false if its page has not arrived
func (m Model) SelectedItem() (source.Item, bool) {
	return m.rt.virt.Item(m.state.SelectedIndex)
}

// Close abandons pending loads and drops pooled rows
func (m Model) Close() {
	m.rt.cancel()
	m.rt.virt.Teardown()
}

func (m *Model) setSelection(index int, align virtualizer.Align) {
	count := m.rt.virt.ItemCount()
	if count == 0 {
		return
	}
	index = max(0, min(index, count-1))
	m.rt.followID = ""
	m.rt.virt.Invalidate(m.state.SelectedIndex)
	m.state.SelectedIndex = index
	m.rt.virt.Invalidate(index)
	m.rt.virt.ScrollToIndex(index, virtualizer.ScrollOptions{Align: align})
}

func (m *Model) followSelection(req virtualizer.PageRequest, items []source.Item) {
	if m.rt.followID == "" {
		return
	}
	for i := range items {
		if items[i].ID == m.rt.followID {
			m.setSelection(req.Start()+i, virtualizer.AlignCenter)
			return
		}
	}
}

// reload drops all rows and asks for the first page. The count is unknown until it arrives
func (m *Model) reload() tea.Cmd {
	m.rt.virt.Reset()
	m.rt.virt.SetItemCount(0)
	m.rt.virt.RequestPage(0)
	return m.sync()
}

// sync brings the virtualizer up to date with the model and schedules a frame if it deferred work
func (m *Model) sync() tea.Cmd {
	if count := m.rt.virt.ItemCount(); m.state.SelectedIndex >= count {
		m.state.SelectedIndex = max(0, count-1)
	}
	m.rt.params = renderParams{width: m.width, state: m.state}
	if err := m.rt.virt.Update(); err != nil {
		return func() tea.Msg { return message.ErrMsg{Err: err} }
	}
	if m.rt.virt.Pending() && !m.rt.frameScheduled {
		m.rt.frameScheduled = true
		return tea.Tick(constants.FrameInterval, func(time.Time) tea.Msg { return message.FrameMsg{} })
	}
	return nil
}

func (m Model) takeLoadCmds() []tea.Cmd {
	reqs := m.rt.requests
	m.rt.requests = nil
	cmds := make([]tea.Cmd, 0, len(reqs))
	for _, req := range reqs {
		cmds = append(cmds, command.LoadPageCmd(m.rt.ctx, m.src, req, m.filter))
	}
	return cmds
}
