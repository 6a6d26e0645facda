package attendance_test

import (
	"testing"
	"time"

	"github.com/UnknownOlympus/janus/internal/attendance"
	"github.com/UnknownOlympus/janus/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeEvent(id int64, kind models.EventKind, ts time.Time) models.AttendanceEvent {
	return models.AttendanceEvent{
		ID:         id,
		EmployeeID: 7,
		CardSerial: "04A1B2C3",
		Kind:       kind,
		Timestamp:  ts,
		Date:       ts.Format(models.DateLayout),
	}
}

func TestClassify_FirstScanIsArrival(t *testing.T) {
	t.Parallel()
	cls := attendance.NewClassifier(5 * time.Minute)
	ts := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

	decision := cls.Classify(ts, nil)

	assert.Equal(t, models.EventArrival, decision.Kind)
	assert.False(t, decision.Duplicate)
	assert.Nil(t, decision.Prior)
}

func TestClassify_StrictToggle(t *testing.T) {
	t.Parallel()
	cls := attendance.NewClassifier(5 * time.Minute)
	start := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

	// Consecutive scans spaced beyond the window must strictly alternate,
	// starting with an arrival.
	var events []models.AttendanceEvent
	want := models.EventArrival
	for i := range 6 {
		ts := start.Add(time.Duration(i) * time.Hour)
		decision := cls.Classify(ts, events)

		require.False(t, decision.Duplicate, "scan %d", i)
		assert.Equal(t, want, decision.Kind, "scan %d", i)

		events = append(events, makeEvent(int64(i+1), decision.Kind, ts))
		want = want.Opposite()
	}
}

func TestClassify_DuplicateWithinWindow(t *testing.T) {
	t.Parallel()
	cls := attendance.NewClassifier(5 * time.Minute)
	arrival := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	events := []models.AttendanceEvent{makeEvent(1, models.EventArrival, arrival)}

	tests := []struct {
		name  string
		delta time.Duration
		dup   bool
		kind  models.EventKind
	}{
		{"bounce right away", 10 * time.Second, true, models.EventArrival},
		{"bounce at two minutes", 2 * time.Minute, true, models.EventArrival},
		{"just inside the window", 5*time.Minute - time.Second, true, models.EventArrival},
		{"exactly at the window", 5 * time.Minute, false, models.EventDeparture},
		{"well beyond the window", time.Hour, false, models.EventDeparture},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			decision := cls.Classify(arrival.Add(tt.delta), events)

			assert.Equal(t, tt.dup, decision.Duplicate)
			assert.Equal(t, tt.kind, decision.Kind)
			if tt.dup {
				require.NotNil(t, decision.Prior)
				assert.Equal(t, int64(1), decision.Prior.ID)
			}
		})
	}
}

func TestClassify_DuplicateReturnsPriorKind(t *testing.T) {
	t.Parallel()
	cls := attendance.NewClassifier(5 * time.Minute)
	arrival := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	departure := time.Date(2024, 5, 10, 18, 30, 0, 0, time.UTC)
	events := []models.AttendanceEvent{
		makeEvent(1, models.EventArrival, arrival),
		makeEvent(2, models.EventDeparture, departure),
	}

	// A badge held against the reader after a departure must not flip
	// the state back to arrival.
	decision := cls.Classify(departure.Add(90*time.Second), events)

	assert.True(t, decision.Duplicate)
	assert.Equal(t, models.EventDeparture, decision.Kind)
	require.NotNil(t, decision.Prior)
	assert.Equal(t, int64(2), decision.Prior.ID)
}

func TestClassify_ReceiptOrderIrrelevant(t *testing.T) {
	t.Parallel()
	cls := attendance.NewClassifier(5 * time.Minute)
	arrival := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	departure := time.Date(2024, 5, 10, 18, 30, 0, 0, time.UTC)

	// Events arrive out of order (backfill); classification must use
	// timestamp order, not receipt order.
	events := []models.AttendanceEvent{
		makeEvent(2, models.EventDeparture, departure),
		makeEvent(1, models.EventArrival, arrival),
	}

	decision := cls.Classify(time.Date(2024, 5, 10, 20, 0, 0, 0, time.UTC), events)

	assert.False(t, decision.Duplicate)
	assert.Equal(t, models.EventArrival, decision.Kind)
}

func TestClassify_BackfillBeforeAllEvents(t *testing.T) {
	t.Parallel()
	cls := attendance.NewClassifier(5 * time.Minute)
	events := []models.AttendanceEvent{
		makeEvent(1, models.EventArrival, time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)),
	}

	// A scan earlier than everything recorded has no chronological
	// predecessor and classifies as an arrival.
	decision := cls.Classify(time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC), events)

	assert.False(t, decision.Duplicate)
	assert.Equal(t, models.EventArrival, decision.Kind)
}

func TestNewClassifier_DefaultWindow(t *testing.T) {
	t.Parallel()
	cls := attendance.NewClassifier(0)
	arrival := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	events := []models.AttendanceEvent{makeEvent(1, models.EventArrival, arrival)}

	decision := cls.Classify(arrival.Add(4*time.Minute), events)

	assert.True(t, decision.Duplicate)
}
