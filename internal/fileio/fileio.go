package fileio

import (
	"fmt"
	tea "github.com/charmbracelet/bubbletea"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"time"
)

type SaveCompleteMsg struct {
	FullPath, SuccessMessage, ErrMessage string
}

// SaveRowsCmd writes rows to fileName, one per line. An empty fileName saves to a timestamped file in the working
// directory
func SaveRowsCmd(fileName string, rows []string) tea.Cmd {
	return func() tea.Msg {
		fullPath, err := saveToFile(fileName, rows, time.Now())
		if err != nil {
			return SaveCompleteMsg{ErrMessage: fmt.Sprintf("Error saving rows: %s", err.Error())}
		}
		return SaveCompleteMsg{
			FullPath:       fullPath,
			SuccessMessage: fmt.Sprintf("Saved %d rows to %s", len(rows), fullPath),
		}
	}
}

func saveToFile(fileName string, rows []string, now time.Time) (string, error) {
	stamp := now.UTC().Format("20060102T150405Z")
	if fileName == "" {
		fileName = "vl_" + stamp
	}
	if strings.HasPrefix(fileName, "~") {
		currUser, err := user.Current()
		if err != nil {
			return "", err
		}
		fileName = currUser.HomeDir + strings.TrimPrefix(fileName, "~")
	}
	// unless otherwise specified, make extension .txt
	if filepath.Ext(fileName) == "" {
		fileName += ".txt"
	}

	fullPath, err := filepath.Abs(fileName)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", err
	}

	// never overwrite: /home/rows.txt -> /home/rows_20210101T120000Z.txt
	if _, err := os.Stat(fullPath); err == nil {
		ext := filepath.Ext(fullPath)
		fullPath = strings.TrimSuffix(fullPath, ext) + "_" + stamp + ext
	} else if !os.IsNotExist(err) {
		return "", err
	}

	f, err := os.Create(fullPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	for _, row := range rows {
		if _, err := f.WriteString(row + "\n"); err != nil {
			return "", err
		}
	}
	return fullPath, nil
}
