package banner

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// UnknownInstructor is the sentinel used when a section has no faculty
// assigned yet (the registration ui shows the same).
const UnknownInstructor = "TBA"

type Meeting struct {
	Days      string `json:"days"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Building  string `json:"building"`
	Room      string `json:"room"`
}

// Snapshot is the normalized availability of one course section at one point
// in time. Snapshots are immutable, a newer poll produces a new one.
type Snapshot struct {
	CRN               string    `json:"crn"`
	CourseCode        string    `json:"courseCode"`
	Title             string    `json:"title"`
	Term              string    `json:"term"`
	Section           string    `json:"section"`
	SeatsAvailable    int       `json:"seatsAvailable"`
	MaximumEnrollment int       `json:"maximumEnrollment"`
	Enrollment        int       `json:"enrollment"`
	WaitAvailable     int       `json:"waitAvailable"`
	WaitCapacity      int       `json:"waitCapacity"`
	Instructor        string    `json:"instructor"`
	Campus            string    `json:"campus"`
	Credits           int       `json:"credits"`
	Meeting           *Meeting  `json:"meeting,omitempty"`
	Error             string    `json:"error,omitempty"`
	Time              time.Time `json:"time"`
}

func (s Snapshot) Open() bool {
	return s.SeatsAvailable > 0
}

// Status is "available" when any seat is open and "full" otherwise,
// there is no third state.
func (s Snapshot) Status() string {
	if s.Open() {
		return "available"
	}
	return "full"
}

// zeroSeatSnapshot stands in for a course the feed currently has no record
// of. Indistinguishable from a full section on purpose: the upstream drops
// sections from the search feed while they have no seats.
func zeroSeatSnapshot(crn string, now time.Time) Snapshot {
	return Snapshot{
		CRN:        crn,
		Instructor: UnknownInstructor,
		Time:       now,
	}
}

// parses a non-negative integer, degrading to zero instead of failing,
// a snapshot with one mangled count is still worth more than no snapshot
func looseInt(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// formatClock renders banner's military clock strings ("1000") the way the
// original notification emails did ("10:00 AM"). Cosmetic only, bad input
// comes back empty.
func formatClock(t string) string {
	if len(t) != 4 {
		return ""
	}
	hours, err := strconv.Atoi(t[:2])
	if err != nil || hours > 23 {
		return ""
	}
	minutes := t[2:]

	period := "AM"
	if hours >= 12 {
		period = "PM"
	}
	display := hours
	switch {
	case hours > 12:
		display = hours - 12
	case hours == 0:
		display = 12
	}
	return fmt.Sprintf("%d:%s %s", display, minutes, period)
}
