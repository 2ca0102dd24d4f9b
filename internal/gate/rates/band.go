package rates

type Band int

const (
	BandNormal Band = iota
	BandWarn
	BandReject
)

// Classify places a counter value into its threshold band. warn and
// max are the per-kind band edges (warn < max): count >= max rejects,
// count >= warn warns, anything below passes clean. Invalid bands are
// treated as "no limit" rather than diverging.
func Classify(count int, warn int, max int) Band {
	if max <= 0 || warn <= 0 {
		return BandNormal
	}
	if count >= max {
		return BandReject
	}
	if count >= warn {
		return BandWarn
	}
	return BandNormal
}
