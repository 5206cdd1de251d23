package constants

import (
	"time"
)

// *********************************************************************************************************************
// THESE ARE KEY TO A RESPONSIVE UI WHILE PAGES STREAM IN (EXACT VALUES DETERMINED BY FEEL)

// FrameInterval is the delay between flushes of deferred virtualizer work. Frames are only scheduled while work is
// pending, so an idle list costs nothing
var FrameInterval = 16 * time.Millisecond

// StatsInterval controls how often process memory is sampled for the footer
var StatsInterval = 1 * time.Second

// ToastDuration controls how long a toast message stays visible
var ToastDuration = 5 * time.Second

// *********************************************************************************************************************

// PlaceholderText is shown for rows whose page has not arrived yet
const PlaceholderText = "loading..."

// ContinuationIndicator marks rows truncated at the viewport width when wrapping is off
const ContinuationIndicator = "..."

// HelpMaxWidth caps the width the help overlay is wrapped to
const HelpMaxWidth = 80
