package types

import "time"

// Clock abstracts time.Now so services can be tested against a fixed
// calendar. The dashboard clips chart domains to the clock's current year,
// which makes the clock an explicit dependency rather than an ambient one.
type Clock interface {
	Now() time.Time
}

// RealClock is the production Clock backed by the system time.
type RealClock struct{}

// Now reports the system time, normalized to UTC.
func (RealClock) Now() time.Time {
	return time.Now().UTC()
}
