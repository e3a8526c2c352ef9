package sim

import (
	"fmt"
	"time"
)

// logCap is a display policy: the anomaly log keeps only the most recent
// entries, newest first. Anomaly records themselves are never dropped.
const logCap = 50

// anomalyLog is a capped, newest-first list of human-readable entries.
type anomalyLog struct {
	entries []string
}

// Add prepends an entry for the record, dropping the oldest past the cap.
func (l *anomalyLog) Add(rec AnomalyRecord) {
	entry := fmt.Sprintf("[%s] anomaly: %.2f", rec.DetectedAt.Format(time.TimeOnly), rec.Value)
	l.entries = append([]string{entry}, l.entries...)
	if len(l.entries) > logCap {
		l.entries = l.entries[:logCap]
	}
}

// Entries returns a copy, newest first.
func (l *anomalyLog) Entries() []string {
	out := make([]string, len(l.entries))
	copy(out, l.entries)
	return out
}

// Clear drops all entries.
func (l *anomalyLog) Clear() {
	l.entries = nil
}
