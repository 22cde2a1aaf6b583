package pager

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// ReclaimPolicy controls when the Pager asks the runtime to reclaim memory
// relative to batch boundaries. The zero value selects the default,
// ReclaimPerBatch.
type ReclaimPolicy int

const (
	// ReclaimNone never calls the Reclaimer.
	ReclaimNone ReclaimPolicy = iota + 1

	// ReclaimPerBatch calls the Reclaimer once after every non-empty batch,
	// including a batch the caller abandoned part way through.
	ReclaimPerBatch

	// ReclaimAtEnd calls the Reclaimer exactly once when the pass ends,
	// however many batches it produced. It also runs when the caller stops
	// early or the pass ends on an error.
	ReclaimAtEnd
)

// String returns the text form used in configuration and flags.
func (p ReclaimPolicy) String() string {
	switch p {
	case 0:
		return ""
	case ReclaimNone:
		return "none"
	case ReclaimPerBatch:
		return "per_batch"
	case ReclaimAtEnd:
		return "at_end"
	default:
		return fmt.Sprintf("ReclaimPolicy(%d)", int(p))
	}
}

func (p ReclaimPolicy) valid() bool {
	return p >= ReclaimNone && p <= ReclaimAtEnd
}

// ParseReclaimPolicy parses the text form of a policy: "none", "per_batch" or
// "at_end".
func ParseReclaimPolicy(s string) (ReclaimPolicy, error) {
	switch s {
	case "none":
		return ReclaimNone, nil
	case "per_batch", "batch":
		return ReclaimPerBatch, nil
	case "at_end", "end":
		return ReclaimAtEnd, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidReclaimPolicy, s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p ReclaimPolicy) MarshalText() ([]byte, error) {
	if !p.valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidReclaimPolicy, int(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *ReclaimPolicy) UnmarshalText(text []byte) error {
	v, err := ParseReclaimPolicy(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Reclaimer performs a memory reclamation request. The effect is not
// guaranteed; only the cadence at which the Pager calls Reclaim is.
type Reclaimer interface {
	Reclaim()
}

// ReclaimerFunc adapts a plain function to the [Reclaimer] interface.
//
// Example:
//
//	var calls int
//	p := pager.New[int64, User](src).WithReclaimer(pager.ReclaimerFunc(func() { calls++ }))
type ReclaimerFunc func()

func (f ReclaimerFunc) Reclaim() {
	f()
}

// GC forces a garbage collection with runtime.GC. It is the default Reclaimer.
var GC Reclaimer = ReclaimerFunc(runtime.GC)

// FreeOSMemory forces a garbage collection and returns as much memory to the
// operating system as possible.
var FreeOSMemory Reclaimer = ReclaimerFunc(debug.FreeOSMemory)

// NopReclaimer does nothing. Useful when a policy must be configured but the
// process manages memory itself.
var NopReclaimer Reclaimer = ReclaimerFunc(func() {})
