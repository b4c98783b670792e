package classifier

import (
	"context"
	"fmt"
	"strings"

	"github.com/chatwarden/warden/moderation/termstore"
)

// Default rating-delta magnitude for a lexical match. The term list carries
// no per-term severity, so every match is treated as maximal.
const DefaultLexicalPenalty = 10

// Lexical flags any message containing a forbidden term as a case-insensitive
// substring. The term set is snapshotted at construction and shared read-only,
// safe for unsynchronized concurrent use.
type Lexical struct {
	terms   []string
	penalty int
}

func NewLexical(ctx context.Context, src termstore.TermStore) (*Lexical, error) {
	raw, err := src.ListTerms(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading forbidden terms: %w", err)
	}
	terms := make([]string, 0, len(raw))
	for _, t := range raw {
		t = foldText(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		terms = append(terms, t)
	}
	return &Lexical{terms: terms, penalty: DefaultLexicalPenalty}, nil
}

// Overrides the flat penalty applied per match.
func (l *Lexical) SetPenalty(p int) {
	l.penalty = p
}

func (l *Lexical) Classify(ctx context.Context, text string) (Verdict, error) {
	folded := foldText(text)
	for _, term := range l.terms {
		if strings.Contains(folded, term) {
			return Verdict{
				IsViolation: true,
				Reason:      fmt.Sprintf("forbidden term: %s", term),
				Severity:    10,
				Penalty:     l.penalty,
			}, nil
		}
	}
	return Verdict{}, nil
}
