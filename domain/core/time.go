package core

import "time"

// Timestamp is a timezone-aware point in time, monotonic in insertion order
// within a conversation (spec §3).
type Timestamp time.Time

// NewTimestamp wraps a time.Time as a Timestamp.
func NewTimestamp(t time.Time) Timestamp { return Timestamp(t) }

// Now returns the current timestamp.
func Now() Timestamp { return Timestamp(time.Now()) }

// Time returns the underlying time.Time.
func (t Timestamp) Time() time.Time { return time.Time(t) }

// IsZero reports whether the timestamp is unset.
func (t Timestamp) IsZero() bool { return time.Time(t).IsZero() }

// Before reports whether t precedes u.
func (t Timestamp) Before(u Timestamp) bool { return time.Time(t).Before(time.Time(u)) }

// After reports whether t follows u.
func (t Timestamp) After(u Timestamp) bool { return time.Time(t).After(time.Time(u)) }

// Sub returns the signed duration t-u.
func (t Timestamp) Sub(u Timestamp) time.Duration { return time.Time(t).Sub(time.Time(u)) }

// BucketEpoch floors the timestamp to an hour-aligned Unix epoch, the
// bucketing unit spec §4.6 uses for coordination clustering.
func (t Timestamp) BucketEpoch() int64 {
	return time.Time(t).Unix() / 3600 * 3600
}

// MarshalJSON delegates to time.Time's RFC3339 encoding.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return time.Time(t).MarshalJSON()
}

// UnmarshalJSON delegates to time.Time's RFC3339 decoding.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var tm time.Time
	if err := tm.UnmarshalJSON(data); err != nil {
		return err
	}
	*t = Timestamp(tm)
	return nil
}

func (t Timestamp) String() string { return t.Time().Format(time.RFC3339) }
