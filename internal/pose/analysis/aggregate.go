package analysis

import (
	"encoding/json"
	"time"
)

// Aggregate composes the two plane analyses and the externally produced
// classification payload into one immutable session result, stamped with the
// current wall-clock time. Pure assembly: no computation, no I/O. The
// classification payload is opaque to this core and stored verbatim.
func Aggregate(frontal FrontalResult, sagittal SagittalResult, classification json.RawMessage) Result {
	return Result{
		Frontal:          frontal,
		Sagittal:         sagittal,
		Classification:   classification,
		CreatedUnixNanos: time.Now().UnixNano(),
	}
}
