package toast

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/robinovitch61/vl/internal/constants"
	"github.com/robinovitch61/vl/internal/dev"
	"github.com/robinovitch61/vl/internal/style"
	"sync"
	"time"
)

var (
	lastID int
	idMtx  sync.Mutex
)

// Model is a one-line message shown until its timeout fires
type Model struct {
	ID           int
	message      string
	Visible      bool
	messageStyle lipgloss.Style
}

func New(message string) Model {
	return Model{
		ID:           nextID(),
		message:      message,
		Visible:      true,
		messageStyle: style.Toast,
	}
}

func (m Model) Init() tea.Cmd {
	id := m.ID
	return tea.Tick(constants.ToastDuration, func(time.Time) tea.Msg { return TimeoutMsg{ID: id} })
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	dev.DebugUpdateMsg("Toast", msg)
	switch msg := msg.(type) {
	case TimeoutMsg:
		if msg.ID > 0 && msg.ID != m.ID {
			return m, nil
		}
		m.Visible = false
	}
	return m, nil
}

// View renders the message truncated to width
func (m Model) View(width int) string {
	if !m.Visible {
		return ""
	}
	return m.messageStyle.MaxWidth(width).Render(m.message)
}

func (m Model) ViewHeight(width int) int {
	if !m.Visible {
		return 0
	}
	return lipgloss.Height(m.View(width))
}

// TimeoutMsg hides the toast with ID, or any toast if ID is 0
type TimeoutMsg struct {
	ID int
}

func nextID() int {
	idMtx.Lock()
	defer idMtx.Unlock()
	lastID++
	return lastID
}
