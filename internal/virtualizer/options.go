package virtualizer

import (
	"github.com/rs/zerolog"
)

// *********************************************************************************************************************
// DEFAULT TUNING. NONE OF THESE ARE CONTRACTS, HOSTS OVERRIDE THEM THROUGH Options

// DefaultEstimatedRowSize is the size assumed for rows that were never measured
const DefaultEstimatedRowSize = 1

// DefaultOverscan is the number of rows rendered beyond each edge of the visible window
const DefaultOverscan = 2

// DefaultPageSize is the number of items asked for per page request
const DefaultPageSize = 50

// DefaultReconcileEvery is the number of measurements after which the estimate is replaced by the measured mean
const DefaultReconcileEvery = 64

// maxLayoutPasses bounds how often one Update re-lays out after rendered rows measured differently than estimated
const maxLayoutPasses = 3

// *********************************************************************************************************************

// Options configures a Virtualizer
type Options struct {
	EstimatedRowSize int
	Overscan         int
	PageSize         int
	// ReconcileEvery <= 0 disables reconciling the estimate with measured sizes
	ReconcileEvery int

	// Scheduler receives deferred page flushes and updates. Defaults to a FrameQueue the host flushes through
	// Virtualizer.Flush
	Scheduler Scheduler
	// Logger defaults to a disabled logger
	Logger *zerolog.Logger
}

// DefaultOptions returns Options with default tuning
func DefaultOptions() Options {
	return Options{
		EstimatedRowSize: DefaultEstimatedRowSize,
		Overscan:         DefaultOverscan,
		PageSize:         DefaultPageSize,
		ReconcileEvery:   DefaultReconcileEvery,
	}
}

func (o Options) normalized() Options {
	o.EstimatedRowSize = max(1, o.EstimatedRowSize)
	o.Overscan = max(0, o.Overscan)
	if o.PageSize <= 0 {
		o.PageSize = DefaultPageSize
	}
	if o.Scheduler == nil {
		o.Scheduler = NewFrameQueue()
	}
	if o.Logger == nil {
		nop := zerolog.Nop()
		o.Logger = &nop
	}
	return o
}
