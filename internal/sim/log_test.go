package sim

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAnomalyLogNewestFirst(t *testing.T) {
	var l anomalyLog

	at := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	l.Add(AnomalyRecord{Value: 1.0, DetectedAt: at})
	l.Add(AnomalyRecord{Value: 2.0, DetectedAt: at.Add(time.Second)})

	entries := l.Entries()
	assert.Equal(t, "[09:30:01] anomaly: 2.00", entries[0])
	assert.Equal(t, "[09:30:00] anomaly: 1.00", entries[1])
}

func TestAnomalyLogCap(t *testing.T) {
	var l anomalyLog

	for i := 0; i < logCap+20; i++ {
		l.Add(AnomalyRecord{Value: float64(i), DetectedAt: time.Now()})
	}

	entries := l.Entries()
	assert.Len(t, entries, logCap)
	// Newest entry survives; the oldest 20 were dropped.
	assert.Contains(t, entries[0], fmt.Sprintf("%.2f", float64(logCap+19)))
}

func TestAnomalyLogClear(t *testing.T) {
	var l anomalyLog
	l.Add(AnomalyRecord{Value: 5, DetectedAt: time.Now()})

	l.Clear()
	assert.Empty(t, l.Entries())
}
