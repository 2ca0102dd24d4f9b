package gate

import (
	"strings"

	"voxelgate.io/internal/protocol"
)

// CodeFor picks the protocol error code for a failed verdict. The
// first matching category wins, ordered by how actionable the code is
// for the client: rate limits are retryable, identity is not.
func CodeFor(errors []string) string {
	if len(errors) == 0 {
		return ""
	}
	joined := strings.Join(errors, "\n")
	switch {
	case strings.Contains(joined, msgRateLimitExceeded):
		return protocol.ErrRateLimit
	case strings.Contains(joined, "Cannot perform actions for another player"):
		return protocol.ErrIdentity
	case strings.Contains(joined, "outside valid range"),
		strings.Contains(joined, "between 0 and 255"),
		strings.Contains(joined, "cannot exceed"),
		strings.Contains(joined, "must be a positive number"):
		return protocol.ErrRange
	default:
		return protocol.ErrStructural
	}
}
