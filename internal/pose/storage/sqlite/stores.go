// Package sqlite persists completed screening sessions and the per-tick
// live verdict log. The geometry core never reads this data back; the
// stores serve the HTTP API, the charts, and the offline plotting tool.
package sqlite

import (
	"strings"
	"time"
)

// retryOnBusy retries fn a few times when sqlite reports a locked database.
// Concurrent verdict logging and session reads share one file DB; short
// lock collisions are expected, anything longer is a real error.
func retryOnBusy(fn func() error) error {
	const maxAttempts = 5
	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if !isBusy(err) {
			return err
		}
		time.Sleep(time.Duration(attempt+1) * 10 * time.Millisecond)
	}
	return err
}

func isBusy(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY")
}
