package moderation

import (
	"context"
	"log/slog"
	"time"

	"github.com/chatwarden/warden/moderation/classifier"
	"github.com/chatwarden/warden/moderation/termstore"
	"github.com/chatwarden/warden/moderation/userstore"
)

// PipelineTestFixture returns a fully wired in-memory pipeline with a lexical
// classifier knowing the terms "slur" and "badword", a mock gateway, and a
// short mute duration. Intentionally exported, for use in other packages.
func PipelineTestFixture() (*Pipeline, *MockGateway) {
	logger := slog.Default()
	gateway := NewMockGateway()

	policy := DefaultPolicy()
	policy.MuteDuration = 25 * time.Millisecond

	ledger := NewLedger(userstore.NewMemUserStore(), policy.BaselineRating)
	sanctions := NewSanctionManager(logger, gateway, ledger, policy.MuteDuration, policy.RestoreBonus)
	sanctions.NoticeTTL = policy.NoticeTTL

	lex, err := classifier.NewLexical(context.Background(), termstore.NewMemTermStore("slur", "badword"))
	if err != nil {
		panic(err)
	}

	pipeline := &Pipeline{
		Logger:     logger,
		Classifier: lex,
		Ledger:     ledger,
		Sanctions:  sanctions,
		Gateway:    gateway,
		Policy:     policy,
	}
	return pipeline, gateway
}
