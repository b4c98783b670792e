package classifier

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chatwarden/warden/moderation/termstore"
)

func TestLexicalBasics(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	lex, err := NewLexical(ctx, termstore.NewMemTermStore("slur", "badword"))
	assert.NoError(err)

	v, err := lex.Classify(ctx, "hello there, nice channel")
	assert.NoError(err)
	assert.False(v.IsViolation)
	assert.Equal(0, v.Penalty)

	v, err = lex.Classify(ctx, "you total badword")
	assert.NoError(err)
	assert.True(v.IsViolation)
	assert.Equal(10, v.Severity)
	assert.Equal(DefaultLexicalPenalty, v.Penalty)
	assert.Contains(v.Reason, "badword")
}

func TestLexicalCaseAndSubstring(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	lex, err := NewLexical(ctx, termstore.NewMemTermStore("slur"))
	assert.NoError(err)

	for _, text := range []string{
		"SLUR",
		"what a SlUr that was",
		"embeddedslurinside",
	} {
		v, err := lex.Classify(ctx, text)
		assert.NoError(err)
		assert.True(v.IsViolation, "expected violation for %q", text)
	}
}

func TestLexicalUnicodeFolding(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	lex, err := NewLexical(ctx, termstore.NewMemTermStore("slur"))
	assert.NoError(err)

	// combining-mark decorations should not dodge the blocklist
	v, err := lex.Classify(ctx, "you są a slúr")
	assert.NoError(err)
	assert.True(v.IsViolation)
}

func TestLexicalPenaltyOverride(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	lex, err := NewLexical(ctx, termstore.NewMemTermStore("slur"))
	assert.NoError(err)
	lex.SetPenalty(25)

	v, err := lex.Classify(ctx, "a slur here")
	assert.NoError(err)
	assert.Equal(25, v.Penalty)
}
