package gate

import (
	"testing"

	"voxelgate.io/internal/protocol"
)

func TestCodeFor(t *testing.T) {
	cases := []struct {
		errors []string
		want   string
	}{
		{nil, ""},
		{[]string{"Rate limit exceeded"}, protocol.ErrRateLimit},
		{[]string{"Cannot perform actions for another player"}, protocol.ErrIdentity},
		{[]string{"position.x outside valid range [-4000, 4000]"}, protocol.ErrRange},
		{[]string{"newBlockId must be an integer between 0 and 255"}, protocol.ErrRange},
		{[]string{"content cannot exceed 500 characters"}, protocol.ErrRange},
		{[]string{"playerId must be a non-empty string"}, protocol.ErrStructural},
		// Rate limit wins over a structural violation in the same verdict.
		{[]string{"timestamp must be a number", "Rate limit exceeded"}, protocol.ErrRateLimit},
	}
	for _, c := range cases {
		if got := CodeFor(c.errors); got != c.want {
			t.Fatalf("CodeFor(%v)=%q want %q", c.errors, got, c.want)
		}
	}
}
