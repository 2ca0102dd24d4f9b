package gate

import "time"

// Context is the per-call snapshot the caller assembles before asking
// for a verdict. PlayerState comes from the player-state repository and
// is read-only here; RateCounts maps action kind to the player's
// current rate-limit count. Both may be nil when the caller has no
// session bound yet.
type Context struct {
	PlayerID    string
	PlayerState map[string]any
	Timestamp   time.Time
	RateCounts  map[string]int
}
