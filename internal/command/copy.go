package command

import (
	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
)

type ContentCopiedToClipboardMsg struct {
	Content string
	Err     error
}

// clipboardWrite is replaced in tests, where no clipboard is available
var clipboardWrite = clipboard.WriteAll

func CopyContentToClipboardCmd(content string) tea.Cmd {
	return func() tea.Msg {
		err := clipboardWrite(content)
		return ContentCopiedToClipboardMsg{Content: content, Err: err}
	}
}
