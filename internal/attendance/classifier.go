package attendance

import (
	"sort"
	"time"

	"github.com/UnknownOlympus/janus/internal/models"
)

// DefaultDuplicateWindow is the anti-bounce window applied when the
// configuration does not override it. A badge held against the reader
// produces a burst of reads; everything inside the window after an
// accepted event is the same event.
const DefaultDuplicateWindow = 5 * time.Minute

// Decision is the outcome of classifying a single scan against the
// existing events of the employee's day.
type Decision struct {
	// Kind is the direction to record, or for duplicates the kind of
	// the prior event the scan collapsed into.
	Kind models.EventKind
	// Duplicate reports that no new event must be stored; the scan is
	// acknowledged to the reader as Kind of the prior event.
	Duplicate bool
	// Prior is the event a duplicate scan collapsed into, nil otherwise.
	Prior *models.AttendanceEvent
}

// Classifier decides whether a scan is an arrival, a departure or a
// bounce. It is pure and total: any input yields a defined decision,
// and the receiver holds no mutable state.
type Classifier struct {
	window time.Duration
}

// NewClassifier creates a classifier with the given anti-bounce window.
// A non-positive window falls back to the default.
func NewClassifier(window time.Duration) *Classifier {
	if window <= 0 {
		window = DefaultDuplicateWindow
	}
	return &Classifier{window: window}
}

// Classify decides the direction of a scan at ts given the events already
// recorded for the same employee and calendar day.
//
// The decision is a strict toggle, not a card-direction sensor: the first
// event of a day is an arrival, every later accepted event flips the kind
// of its chronological predecessor. Events are re-sorted by timestamp
// before classification, so receipt order (backfill, clock skew) does not
// change the outcome. A scan closer than the window to its chronological
// predecessor is a bounce and collapses into that event.
func (c *Classifier) Classify(ts time.Time, events []models.AttendanceEvent) Decision {
	if len(events) == 0 {
		return Decision{Kind: models.EventArrival}
	}

	sorted := make([]models.AttendanceEvent, len(events))
	copy(sorted, events)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	// Chronological predecessor of ts, not the last event received.
	idx := sort.Search(len(sorted), func(i int) bool {
		return sorted[i].Timestamp.After(ts)
	})
	if idx == 0 {
		return Decision{Kind: models.EventArrival}
	}

	prior := sorted[idx-1]
	if ts.Sub(prior.Timestamp) < c.window {
		return Decision{Kind: prior.Kind, Duplicate: true, Prior: &prior}
	}

	return Decision{Kind: prior.Kind.Opposite()}
}
