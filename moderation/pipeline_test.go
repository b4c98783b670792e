package moderation

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatwarden/warden/moderation/classifier"
	"github.com/chatwarden/warden/moderation/userstore"
)

func msg(user, text string) MessageEvent {
	return MessageEvent{
		MessageID: "msg1",
		UserID:    user,
		GuildID:   "guild1",
		ChannelID: "chan1",
		Text:      text,
	}
}

func TestPipelineCleanMessage(t *testing.T) {
	// scenario: user at baseline sends a clean message
	assert := assert.New(t)
	ctx := context.Background()

	pipeline, gateway := PipelineTestFixture()
	defer pipeline.Sanctions.Shutdown()

	assert.NoError(pipeline.ProcessMessage(ctx, msg("alice", "hello")))
	rating, err := pipeline.Ledger.Get(ctx, "alice")
	assert.NoError(err)
	assert.Equal(51, rating)
	assert.Equal(0, gateway.DeletedCount())
	assert.False(pipeline.Sanctions.Muted("alice"))
}

func TestPipelineRatingCommand(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	pipeline, gateway := PipelineTestFixture()
	defer pipeline.Sanctions.Shutdown()

	// no classification, no delta, works for a brand-new user
	assert.NoError(pipeline.ProcessMessage(ctx, msg("alice", "!rating")))
	assert.Equal(1, gateway.NoticeCount())
	assert.Contains(gateway.Notices[0], "50")

	rating, err := pipeline.Ledger.Get(ctx, "alice")
	assert.NoError(err)
	assert.Equal(50, rating)
}

func TestPipelineShortMessage(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	pipeline, gateway := PipelineTestFixture()
	defer pipeline.Sanctions.Shutdown()

	// too short to classify: rewarded without consulting the backend
	pipeline.Classifier = &stubClassifier{verdict: classifier.Verdict{IsViolation: true, Penalty: 10}}
	assert.NoError(pipeline.ProcessMessage(ctx, msg("alice", "ok")))
	rating, err := pipeline.Ledger.Get(ctx, "alice")
	assert.NoError(err)
	assert.Equal(51, rating)
	assert.Equal(0, gateway.DeletedCount())
}

func TestPipelineConsecutiveRewards(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	pipeline, _ := PipelineTestFixture()
	defer pipeline.Sanctions.Shutdown()

	const n = 10
	for i := 0; i < n; i++ {
		assert.NoError(pipeline.ProcessMessage(ctx, msg("alice", fmt.Sprintf("perfectly fine message %d", i))))
	}
	rating, err := pipeline.Ledger.Get(ctx, "alice")
	assert.NoError(err)
	assert.Equal(pipeline.Policy.BaselineRating+n, rating)
}

func TestPipelineLexicalViolationAndMuteCycle(t *testing.T) {
	// scenario: user at rating 5 posts a forbidden term; -10 lands them at
	// -5, the message is deleted, a mute engages, and after the window the
	// restriction lifts with +20 restored
	assert := assert.New(t)
	ctx := context.Background()

	pipeline, gateway := PipelineTestFixture()
	defer pipeline.Sanctions.Shutdown()

	_, err := pipeline.Ledger.Adjust(ctx, "alice", 5-pipeline.Policy.BaselineRating)
	require.NoError(t, err)

	assert.NoError(pipeline.ProcessMessage(ctx, msg("alice", "you are a slur")))
	assert.Equal(1, gateway.DeletedCount())
	assert.True(pipeline.Sanctions.Muted("alice"))
	assert.True(gateway.IsRestricted("alice"))

	rec, err := pipeline.Ledger.Record(ctx, "alice")
	assert.NoError(err)
	assert.Equal(-5, rec.Rating)
	assert.Equal(1, rec.ViolationCount)
	assert.Equal("you are a slur", rec.LastViolationText)

	assert.Eventually(func() bool { return !pipeline.Sanctions.Muted("alice") }, time.Second, 5*time.Millisecond)
	assert.False(gateway.IsRestricted("alice"))
	rating, err := pipeline.Ledger.Get(ctx, "alice")
	assert.NoError(err)
	assert.Equal(15, rating)
}

type stubClassifier struct {
	verdict classifier.Verdict
	err     error
}

func (s *stubClassifier) Classify(ctx context.Context, text string) (classifier.Verdict, error) {
	return s.verdict, s.err
}

func TestPipelineSeverityScaledViolation(t *testing.T) {
	// scenario: judge says severity 10 for a user at rating 3; -50 lands
	// them at -47, and only one mute engages no matter how many messages
	// arrive during the window
	assert := assert.New(t)
	ctx := context.Background()

	pipeline, gateway := PipelineTestFixture()
	defer pipeline.Sanctions.Shutdown()
	pipeline.Policy.MuteDuration = time.Minute
	pipeline.Sanctions.Duration = time.Minute
	pipeline.Classifier = &stubClassifier{verdict: classifier.Verdict{
		IsViolation: true,
		Reason:      "threat",
		Severity:    10,
		Penalty:     50,
	}}

	_, err := pipeline.Ledger.Adjust(ctx, "alice", 3-pipeline.Policy.BaselineRating)
	require.NoError(t, err)

	assert.NoError(pipeline.ProcessMessage(ctx, msg("alice", "something awful")))
	rating, err := pipeline.Ledger.Get(ctx, "alice")
	assert.NoError(err)
	assert.Equal(-47, rating)
	assert.True(pipeline.Sanctions.Muted("alice"))

	for i := 0; i < 3; i++ {
		assert.NoError(pipeline.ProcessMessage(ctx, msg("alice", "still going at it")))
	}
	assert.Equal(1, gateway.ApplyCalls)

	// bookkeeping continues during the mute window
	rec, err := pipeline.Ledger.Record(ctx, "alice")
	assert.NoError(err)
	assert.Equal(4, rec.ViolationCount)
}

func TestPipelineClassifierFailOpen(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	pipeline, gateway := PipelineTestFixture()
	defer pipeline.Sanctions.Shutdown()
	pipeline.Classifier = &stubClassifier{err: fmt.Errorf("backend exploded")}

	// classifier trouble never reaches the caller or costs rating
	assert.NoError(pipeline.ProcessMessage(ctx, msg("alice", "an ordinary message")))
	rating, err := pipeline.Ledger.Get(ctx, "alice")
	assert.NoError(err)
	assert.Equal(51, rating)
	assert.Equal(0, gateway.DeletedCount())
}

func TestPipelineStoreFailureSkipsSanction(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	pipeline, gateway := PipelineTestFixture()
	defer pipeline.Sanctions.Shutdown()

	store := &failingUserStore{UserStore: userstore.NewMemUserStore(), failPut: true}
	pipeline.Ledger = NewLedger(store, pipeline.Policy.BaselineRating)
	pipeline.Sanctions.Ledger = pipeline.Ledger

	err := pipeline.ProcessMessage(ctx, msg("alice", "you are a slur"))
	assert.Error(err)
	assert.False(pipeline.Sanctions.Muted("alice"))
	assert.Equal(0, gateway.ApplyCalls)
}

func TestPipelineDeleteFailureNotFatal(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	pipeline, gateway := PipelineTestFixture()
	defer pipeline.Sanctions.Shutdown()
	gateway.FailDelete = true

	assert.NoError(pipeline.ProcessMessage(ctx, msg("alice", "you are a slur")))
	rec, err := pipeline.Ledger.Record(ctx, "alice")
	assert.NoError(err)
	assert.Equal(40, rec.Rating)
	assert.Equal(1, rec.ViolationCount)
}
