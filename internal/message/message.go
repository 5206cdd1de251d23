package message

type ErrMsg struct{ Err error }

func (e ErrMsg) Error() string { return e.Err.Error() }

// FrameMsg flushes deferred virtualizer work. Sent only while work is pending
type FrameMsg struct{}

type StatsTickMsg struct{}
