package moderation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/chatwarden/warden/moderation/classifier"
)

// Policy holds the deployment-wide moderation constants. One consistent set
// per deployment: the baseline in particular must not vary per code path.
type Policy struct {
	// rating assigned on first contact
	BaselineRating int
	// messages at or below this rune count skip classification entirely
	MinMessageLen int
	// rating reward for a non-violating message
	RewardDelta int
	// partial rating restoration applied once per mute cycle
	RestoreBonus int
	// how long a mute sanction lasts
	MuteDuration time.Duration
	// chat command which reports the caller's rating
	RatingCommandPrefix string
	// how long transient notices stay visible
	NoticeTTL time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		BaselineRating:      50,
		MinMessageLen:       3,
		RewardDelta:         1,
		RestoreBonus:        20,
		MuteDuration:        30 * time.Second,
		RatingCommandPrefix: "!rating",
		NoticeTTL:           5 * time.Second,
	}
}

// Pipeline is the per-message moderation orchestrator: classify, settle the
// rating delta, and engage a sanction when reputation crosses the threshold.
//
// Safe for concurrent use; rating updates for one user are linearized by the
// Ledger, and mute entry by the SanctionManager. A hung judge backend only
// stalls the message that hit it.
type Pipeline struct {
	Logger     *slog.Logger
	Classifier classifier.Classifier
	Ledger     *Ledger
	Sanctions  *SanctionManager
	Gateway    ChatGateway
	Policy     Policy
}

func (p *Pipeline) ProcessMessage(ctx context.Context, msg MessageEvent) error {
	// similar to an HTTP server, we want to recover any panics from message processing
	defer func() {
		if r := recover(); r != nil {
			p.Logger.Error("moderation pipeline exception", "err", r, "user", msg.UserID)
		}
	}()
	start := time.Now()
	defer func() {
		messageProcessDuration.Observe(time.Since(start).Seconds())
	}()

	logger := p.Logger.With("user", msg.UserID, "channel", msg.ChannelID)

	if strings.HasPrefix(msg.Text, p.Policy.RatingCommandPrefix) {
		return p.handleRatingCommand(ctx, msg)
	}

	if utf8.RuneCountInString(strings.TrimSpace(msg.Text)) <= p.Policy.MinMessageLen {
		// too short to classify without false positives
		messageProcessCount.WithLabelValues("short").Inc()
		_, err := p.Ledger.Adjust(ctx, msg.UserID, p.Policy.RewardDelta)
		if err != nil {
			ledgerErrorCount.Inc()
			return fmt.Errorf("adjusting rating: %w", err)
		}
		return nil
	}

	verdict, err := p.Classifier.Classify(ctx, msg.Text)
	if err != nil {
		// fail open: a broken classifier must never penalize users or
		// surface to the event source
		logger.Error("classifier error, failing open", "err", err)
		verdict = classifier.Verdict{Reason: classifier.ReasonUnavailable}
	}
	if verdict.Reason == classifier.ReasonUnavailable {
		logger.Warn("classifier unavailable, message passed through")
	}

	if !verdict.IsViolation {
		messageProcessCount.WithLabelValues("ok").Inc()
		newRating, err := p.Ledger.Adjust(ctx, msg.UserID, p.Policy.RewardDelta)
		if err != nil {
			ledgerErrorCount.Inc()
			return fmt.Errorf("adjusting rating: %w", err)
		}
		p.checkSanction(ctx, msg, newRating)
		return nil
	}

	return p.handleViolation(ctx, logger, msg, verdict)
}

func (p *Pipeline) handleRatingCommand(ctx context.Context, msg MessageEvent) error {
	messageProcessCount.WithLabelValues("command").Inc()
	rating, err := p.Ledger.Get(ctx, msg.UserID)
	if err != nil {
		ledgerErrorCount.Inc()
		return fmt.Errorf("reading rating: %w", err)
	}
	notice := fmt.Sprintf("📊 %s, your rating: %d", msg.UserID, rating)
	if err := p.Gateway.SendNotice(ctx, msg.ChannelID, notice, 0); err != nil {
		p.Logger.Warn("failed to send rating notice", "user", msg.UserID, "err", err)
	}
	return nil
}

func (p *Pipeline) handleViolation(ctx context.Context, logger *slog.Logger, msg MessageEvent, verdict classifier.Verdict) error {
	messageProcessCount.WithLabelValues("violation").Inc()
	violationCount.Inc()

	// best-effort: a message we can't delete still costs rating
	if err := p.Gateway.DeleteMessage(ctx, msg.ChannelID, msg.MessageID); err != nil {
		enforcementErrorCount.WithLabelValues("delete").Inc()
		logger.Warn("failed to delete violating message", "err", err)
	}

	rec, err := p.Ledger.ApplyViolation(ctx, msg.UserID, verdict.Penalty, msg.Text)
	if err != nil {
		// without a settled rating there is nothing trustworthy to sanction on
		ledgerErrorCount.Inc()
		return fmt.Errorf("applying violation: %w", err)
	}
	logger.Info("violation", "reason", verdict.Reason, "severity", verdict.Severity, "penalty", verdict.Penalty, "rating", rec.Rating, "violations", rec.ViolationCount)

	notice := fmt.Sprintf("⚠️ %s: %s (-%d points, violation #%d)", msg.UserID, verdict.Reason, verdict.Penalty, rec.ViolationCount)
	if err := p.Gateway.SendNotice(ctx, msg.ChannelID, notice, p.Policy.NoticeTTL); err != nil {
		logger.Warn("failed to send violation notice", "err", err)
	}

	p.checkSanction(ctx, msg, rec.Rating)
	return nil
}

func (p *Pipeline) checkSanction(ctx context.Context, msg MessageEvent, rating int) {
	if rating > 0 {
		return
	}
	// Engage logs its own failures; an already-muted user is a no-op
	_ = p.Sanctions.Engage(ctx, msg.UserID, msg.GuildID, msg.ChannelID)
}
