package autosave

import "time"

// Restore outcomes reported to the Observer.
const (
	RestoreFound   = "found"
	RestoreAbsent  = "absent"
	RestoreCorrupt = "corrupt"
	RestoreFailed  = "failed"
)

// Observer receives autosave telemetry.
type Observer interface {
	RecordSave(duration time.Duration, err error)
	RecordRestore(outcome string)
}

type nopObserver struct{}

func (nopObserver) RecordSave(time.Duration, error) {}
func (nopObserver) RecordRestore(string)            {}
