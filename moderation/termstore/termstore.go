package termstore

import (
	"context"
	"encoding/json"
	"io"
	"os"
)

// TermStore is a read-only source of forbidden terms for lexical
// classification. Implementations are expected to be cheap to call; the
// lexical classifier snapshots the term list once at construction.
type TermStore interface {
	ListTerms(ctx context.Context) ([]string, error)
}

type MemTermStore struct {
	Terms []string
}

func NewMemTermStore(terms ...string) MemTermStore {
	return MemTermStore{Terms: terms}
}

func (s MemTermStore) ListTerms(ctx context.Context) ([]string, error) {
	return s.Terms, nil
}

// Loads a flat JSON array of terms from a local file.
func LoadFromFileJSON(p string) (MemTermStore, error) {
	var s MemTermStore

	f, err := os.Open(p)
	if err != nil {
		return s, err
	}
	defer func() { _ = f.Close() }()

	raw, err := io.ReadAll(f)
	if err != nil {
		return s, err
	}

	if err := json.Unmarshal(raw, &s.Terms); err != nil {
		return s, err
	}
	return s, nil
}
