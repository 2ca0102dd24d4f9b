package rates

import "testing"

func TestClassify_Bands(t *testing.T) {
	warn, max := 5, 10

	for count := 0; count < warn; count++ {
		if got := Classify(count, warn, max); got != BandNormal {
			t.Fatalf("count=%d band=%v want normal", count, got)
		}
	}
	for count := warn; count < max; count++ {
		if got := Classify(count, warn, max); got != BandWarn {
			t.Fatalf("count=%d band=%v want warn", count, got)
		}
	}
	for _, count := range []int{max, max + 1, max * 10} {
		if got := Classify(count, warn, max); got != BandReject {
			t.Fatalf("count=%d band=%v want reject", count, got)
		}
	}
}

func TestClassify_InvalidBandsAllow(t *testing.T) {
	if got := Classify(1000, 0, 0); got != BandNormal {
		t.Fatalf("zero thresholds band=%v want normal", got)
	}
	if got := Classify(1000, -1, -1); got != BandNormal {
		t.Fatalf("negative thresholds band=%v want normal", got)
	}
}
