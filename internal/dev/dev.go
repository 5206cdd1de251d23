package dev

import (
	"fmt"
	"github.com/charmbracelet/bubbles/cursor"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/robinovitch61/vl/internal/logger"
	"github.com/robinovitch61/vl/internal/message"
	"log"
	"os"
	"sync"
)

var debugSet = os.Getenv("VL_DEBUG")
var debugPath = os.Getenv("VL_DEBUG_PATH")

var (
	debugOnce   sync.Once
	debugLogger *logger.Logger
)

// Enabled returns true if VL_DEBUG is set
func Enabled() bool {
	return debugSet != ""
}

// Logger returns the debug file logger, or nil when VL_DEBUG is unset
func Logger() *logger.Logger {
	if !Enabled() {
		return nil
	}
	debugOnce.Do(func() {
		if debugPath == "" {
			debugPath = "vl.log"
		}
		file, err := os.OpenFile(debugPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			log.Fatal(err)
		}
		debugLogger, err = logger.New(logger.Options{Level: "debug", HumanReadable: true, Writer: file})
		if err != nil {
			log.Fatal(err)
		}
	})
	return debugLogger
}

func Debug(msg string) {
	Logger().Debug(msg)
}

func DebugUpdateMsg(component string, msg tea.Msg) {
	if !Enabled() {
		return
	}
	switch msg.(type) {
	case message.FrameMsg, message.StatsTickMsg, cursor.BlinkMsg:
	// skip logging messages that are too frequent
	default:
		Debug(fmt.Sprintf("Update %s: %T", component, msg))
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			Debug(fmt.Sprintf("  Key: '%v'", keyMsg.String()))
		}
	}
}
