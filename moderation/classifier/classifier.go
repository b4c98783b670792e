package classifier

import (
	"context"
)

// Reason string used on fail-open verdicts, when a judge backend could not
// be reached or returned garbage. Distinguishable from real reasons so the
// pipeline can log it without penalizing the user.
const ReasonUnavailable = "classifier unavailable"

// Verdict is the outcome of scoring one message for policy violations.
//
// Penalty is the rating-delta magnitude the backend's own policy assigns to
// this violation (flat for lexical matching, severity-scaled for judge
// backends). Zero when IsViolation is false.
type Verdict struct {
	IsViolation bool   `json:"is_bad"`
	Reason      string `json:"reason"`
	Severity    int    `json:"severity"`
	Penalty     int    `json:"-"`
}

// Classifier scores a chat message for policy violations.
//
// Implementations backed by a remote judge must enforce their own per-call
// timeout and fail open: transport errors, timeouts, and malformed responses
// yield a non-violation verdict with severity 0 and ReasonUnavailable, not an
// error. The error return is reserved for programming or configuration
// mistakes which callers should surface.
type Classifier interface {
	Classify(ctx context.Context, text string) (Verdict, error)
}

var _ Classifier = (*Lexical)(nil)
var _ Classifier = (*Judge)(nil)
var _ Classifier = (*OpenAIJudge)(nil)
var _ Classifier = (*Cached)(nil)

func failOpen() Verdict {
	failOpenCount.Inc()
	return Verdict{
		IsViolation: false,
		Reason:      ReasonUnavailable,
		Severity:    0,
	}
}
