package core

import (
	"strconv"
	"time"
)

// Clock abstracts time retrieval so business logic is deterministic in tests.
type Clock interface {
	Now() time.Time
}

// RealClock returns the actual current time.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// IDGenerator abstracts record ID generation so tests are deterministic.
type IDGenerator interface {
	New() string
}

// MillisIDGenerator produces IDs from the current time in milliseconds, the
// format all existing records use. Two records created in the same millisecond
// collide; with interactive single-user usage that is accepted.
type MillisIDGenerator struct {
	Clock Clock
}

func (g MillisIDGenerator) New() string {
	return strconv.FormatInt(g.Clock.Now().UnixMilli(), 10)
}

// ISOTime formats t the way stored dates are written: UTC, millisecond
// precision, trailing Z.
func ISOTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}
