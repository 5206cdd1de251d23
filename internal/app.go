package internal

// NOTE: Searching for `// #` will walk you through the main flow of the application

import (
	"fmt"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wrap"
	"github.com/robinovitch61/vl/internal/command"
	"github.com/robinovitch61/vl/internal/config"
	"github.com/robinovitch61/vl/internal/constants"
	"github.com/robinovitch61/vl/internal/dev"
	"github.com/robinovitch61/vl/internal/fileio"
	"github.com/robinovitch61/vl/internal/filter"
	"github.com/robinovitch61/vl/internal/help"
	"github.com/robinovitch61/vl/internal/keymap"
	"github.com/robinovitch61/vl/internal/listview"
	"github.com/robinovitch61/vl/internal/logger"
	"github.com/robinovitch61/vl/internal/message"
	"github.com/robinovitch61/vl/internal/source"
	"github.com/robinovitch61/vl/internal/stats"
	"github.com/robinovitch61/vl/internal/toast"
	"strings"
	"time"
)

type Model struct {
	config        config.Config
	keyMap        keymap.KeyMap
	log           *logger.Logger
	src           source.Source
	list          listview.Model
	filter        filter.Model
	toast         toast.Model
	sampler       *stats.Sampler
	width, height int
	initialized   bool
	helpText      string
	err           error
}

// InitialModel wires the list to src. Nothing loads until Init
func InitialModel(c config.Config, src source.Source, log *logger.Logger) Model {
	m := Model{
		config: c,
		keyMap: c.KeyMap,
		log:    log,
		src:    src,
		list:   listview.New(src, c.KeyMap, c.VirtualizerOptions(), c.Wrap),
		filter: filter.New(c.KeyMap),
	}
	if c.Stats {
		sampler, err := stats.NewSampler()
		if err != nil {
			log.Warn(fmt.Sprintf("stats disabled: %v", err))
		} else {
			m.sampler = sampler
		}
	}
	return m
}

// #1: The list asks for its first page. Page requests are turned into commands on each frame while work is pending
func (m Model) Init() tea.Cmd {
	m.log.Info(fmt.Sprintf("loading from %s", m.src.Name()))
	cmds := []tea.Cmd{m.list.Init()}
	if m.sampler != nil {
		cmds = append(cmds, statsTickCmd())
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	dev.DebugUpdateMsg("App", msg)
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	// #4: The user presses a key. Global keys are handled here, the rest go to the filter or the list
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case message.ErrMsg:
		m.log.Error(msg.Err, "list update failed")
		m.err = msg.Err
		return m, nil

	// WindowSizeMsg arrives once on startup, then again every time the window is resized
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.initialized = true
		if m.helpText != "" {
			m.helpText = help.MakeHelp(m.keyMap, m.width)
		}
		m.list.SetSize(m.width, max(0, m.height-m.filterHeight()))
		m.list, cmd = m.list.Update(msg)
		return m, cmd

	// #3: A page failed to load. The list asks for it again once it is needed
	case listview.PageFailedMsg:
		m.log.Warn(fmt.Sprintf("page %d failed: %v", msg.Page, msg.Err))
		return m.withToast(fmt.Sprintf("Error loading page %d: %s", msg.Page, msg.Err.Error()))

	case command.ContentCopiedToClipboardMsg:
		toastMsg := "Copied to clipboard"
		if msg.Err != nil {
			toastMsg = fmt.Sprintf("Error copying to clipboard: %s", msg.Err.Error())
		}
		return m.withToast(toastMsg)

	case fileio.SaveCompleteMsg:
		toastMsg := msg.SuccessMessage
		if toastMsg == "" {
			toastMsg = msg.ErrMessage
		}
		return m.withToast(toastMsg)

	case toast.TimeoutMsg:
		m.toast, cmd = m.toast.Update(msg)
		return m, cmd

	case message.StatsTickMsg:
		if m.sampler == nil {
			return m, nil
		}
		m.list.SetFooterSuffix(m.statsText())
		return m, statsTickCmd()
	}

	// #2: Frames and loaded pages go to the list, cursor blinks to the filter
	m.list, cmd = m.list.Update(msg)
	cmds = append(cmds, cmd)
	m.filter, cmd = m.filter.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.err != nil {
		errString := wrap.String(m.err.Error(), m.width)
		return lipgloss.JoinVertical(
			lipgloss.Left,
			"Error",
			"",
			"ctrl+c to quit",
			"",
			errString,
		)
	}
	if !m.initialized {
		return ""
	}
	if m.helpText != "" {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.helpText)
	}

	f := m.filter
	if f.Applied() != "" && !f.Focused() {
		f.SetSuffix(fmt.Sprintf("  (%d matches)", m.list.Count()))
	}
	viewLines := strings.Split(f.View(m.width), "\n")
	viewLines = append(viewLines, strings.Split(m.list.View(), "\n")...)
	if toastHeight := m.toast.ViewHeight(m.width); toastHeight > 0 && toastHeight < len(viewLines) {
		// toast covers the lines above the footer
		footer := viewLines[len(viewLines)-1]
		viewLines = viewLines[:len(viewLines)-1-toastHeight]
		viewLines = append(viewLines, strings.Split(m.toast.View(m.width), "\n")...)
		viewLines = append(viewLines, footer)
	}
	return strings.Join(viewLines, "\n")
}

func (m Model) filterHeight() int {
	return lipgloss.Height(m.filter.View(m.width))
}

// tea.KeyMsg handling
// ---

func (m Model) handleKeyMsg(msg tea.KeyMsg) (Model, tea.Cmd) {
	dev.Debug(fmt.Sprintf("App keyMsg: %v", msg))
	defer dev.Debug("App keyMsg complete")

	var cmd tea.Cmd

	// #6: Editing the filter takes every key but ctrl+c. The list reloads only when the edit is applied
	if m.filter.Focused() {
		return m.handleFilterKeyMsg(msg)
	}

	if key.Matches(msg, m.keyMap.Quit) {
		return m, m.quitCmd()
	}

	// ignore key messages other than exit if an error is present
	if m.err != nil {
		return m, nil
	}

	// if help text visible, pressing any key will dismiss it
	if m.helpText != "" {
		m.helpText = ""
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keyMap.Help):
		m.helpText = help.MakeHelp(m.keyMap, m.width)
		return m, nil

	case key.Matches(msg, m.keyMap.Filter):
		m.filter.Focus()
		return m, m.list.SetFocused(false)

	case key.Matches(msg, m.keyMap.Clear):
		if m.filter.Clear() {
			m.log.Debug("filter cleared")
			return m, m.list.SetFilter("")
		}
		return m, nil

	case key.Matches(msg, m.keyMap.Save):
		return m, fileio.SaveRowsCmd("", m.list.VisibleRows())
	}

	// #5: Navigation moves the selection and scrolls the list, which asks for the pages it now shows
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleFilterKeyMsg(msg tea.KeyMsg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case msg.Type == tea.KeyCtrlC:
		return m, m.quitCmd()

	case key.Matches(msg, m.filter.KeyMap.Forward):
		var cmds []tea.Cmd
		if m.filter.Apply() {
			m.log.Debug(fmt.Sprintf("filter applied: %q", m.filter.Applied()))
			cmds = append(cmds, m.list.SetFilter(m.filter.Applied()))
		}
		cmds = append(cmds, m.list.SetFocused(true))
		return m, tea.Batch(cmds...)

	case key.Matches(msg, m.filter.KeyMap.Back):
		m.filter.Cancel()
		return m, m.list.SetFocused(true)
	}

	m.filter, cmd = m.filter.Update(msg)
	return m, cmd
}

func (m Model) withToast(text string) (Model, tea.Cmd) {
	m.toast = toast.New(text)
	return m, m.toast.Init()
}

func (m Model) statsText() string {
	sample, err := m.sampler.Sample()
	if err != nil {
		m.log.Warn(fmt.Sprintf("sampling stats: %v", err))
		return fmt.Sprintf("%d rows pooled", m.list.PoolSize())
	}
	return fmt.Sprintf("%s  %d rows pooled", sample, m.list.PoolSize())
}

func (m Model) quitCmd() tea.Cmd {
	m.list.Close()
	m.log.Info("quitting")
	return tea.Quit
}

func statsTickCmd() tea.Cmd {
	return tea.Tick(constants.StatsInterval, func(time.Time) tea.Msg { return message.StatsTickMsg{} })
}
