package document

import (
	"fmt"
	"time"
)

// Document IDs are 16 ASCII digits: a zero-padded 10-digit
// seconds-since-epoch timestamp followed by a zero-padded 6-digit
// per-second counter. The full ID orders lexicographically the same
// way it orders numerically by (timestamp, counter).
const (
	IDLength         = 16
	idTimestampWidth = 10
	idCounterWidth   = 6
)

// EncodeID builds an ID string from a timestamp and a counter value.
// The counter contributes only its 6 low decimal digits.
func EncodeID(timestamp int64, counter uint32) string {
	var id [IDLength]byte

	ts := timestamp
	for p := idTimestampWidth - 1; p >= 0; p-- {
		id[p] = byte(ts%10) + '0'
		ts /= 10
	}

	cnt := counter
	for p := IDLength - 1; p >= idTimestampWidth; p-- {
		id[p] = byte(cnt%10) + '0'
		cnt /= 10
	}

	return string(id[:])
}

// DecodeID splits an ID into its timestamp and counter components.
func DecodeID(id string) (timestamp int64, counter uint32, err error) {
	if len(id) != IDLength {
		return 0, 0, fmt.Errorf("invalid document id length %d", len(id))
	}
	return int64(ParseDigits(id[:idTimestampWidth])),
		uint32(ParseDigits(id[idTimestampWidth:])), nil
}

// TimestampByID returns the epoch-seconds portion of an ID. Returns 0
// for malformed IDs.
func TimestampByID(id string) int64 {
	if len(id) != IDLength {
		return 0
	}
	return int64(ParseDigits(id[:idTimestampWidth]))
}

// ParseDigits is a fast fixed-length decimal parse. Non-digit bytes
// produce garbage rather than an error; callers validate length only,
// the same contract the binary search relies on.
func ParseDigits(s string) uint64 {
	var val uint64
	for i := 0; i < len(s); i++ {
		val = val*10 + uint64(s[i]-'0')
	}
	return val
}

// IDGenerator stamps time-ordered document IDs. The counter resets
// whenever the wall clock moves to a new second and increments before
// use, so the first ID within a second carries counter value 1.
// Uniqueness holds below 10^6 appends per second.
type IDGenerator struct {
	lastTimestamp int64
	counter       uint32
}

// NewIDGenerator creates a generator primed to the current time
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{lastTimestamp: time.Now().Unix()}
}

// Next returns a fresh ID stamped with the current wall-clock second
func (g *IDGenerator) Next() string {
	return g.nextAt(time.Now().Unix())
}

func (g *IDGenerator) nextAt(timestamp int64) string {
	// Never step backwards past an observed ID, even under clock skew
	if timestamp < g.lastTimestamp {
		timestamp = g.lastTimestamp
	}
	if timestamp != g.lastTimestamp {
		g.counter = 0
	}
	g.counter++
	g.lastTimestamp = timestamp
	return EncodeID(timestamp, g.counter)
}

// Observe advances the generator past an existing ID so that IDs
// stamped after a snapshot load stay monotonic.
func (g *IDGenerator) Observe(id string) {
	ts, cnt, err := DecodeID(id)
	if err != nil {
		return
	}
	if ts > g.lastTimestamp || (ts == g.lastTimestamp && cnt > g.counter) {
		g.lastTimestamp = ts
		g.counter = cnt
	}
}
