package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/carlmjohnson/versioninfo"
	"golang.org/x/time/rate"
)

const (
	DefaultJudgeTimeout = 5 * time.Second
	// Per the judge contract, severities below the gate are advisory and do
	// not count as violations.
	DefaultSeverityGate = 7
	// Rating-delta magnitude per severity point.
	DefaultPenaltyPerSeverity = 5
)

// Judge delegates classification to a remote verdict service over HTTP.
//
// Requests carry a bounded timeout and are never retried: any transport
// failure, non-200 status, or malformed response body fails open. A hung
// judge costs at most one timeout per message, not a retry storm.
type Judge struct {
	Client http.Client
	Host   string

	// only severities >= SeverityGate count as violations
	SeverityGate       int
	PenaltyPerSeverity int

	limiter *rate.Limiter
	logger  *slog.Logger
}

// schema of the judge verdict endpoint
type judgeRequest struct {
	Text string `json:"text"`
}

type judgeResponse struct {
	IsBad    bool   `json:"is_bad"`
	Reason   string `json:"reason"`
	Severity int    `json:"severity"`
}

func NewJudge(host string, timeout time.Duration, callsPerSec int) *Judge {
	if timeout <= 0 {
		timeout = DefaultJudgeTimeout
	}
	var limiter *rate.Limiter
	if callsPerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(callsPerSec), callsPerSec)
	}
	return &Judge{
		Client:             http.Client{Timeout: timeout},
		Host:               host,
		SeverityGate:       DefaultSeverityGate,
		PenaltyPerSeverity: DefaultPenaltyPerSeverity,
		limiter:            limiter,
		logger:             slog.Default().With("system", "judge"),
	}
}

func (j *Judge) Classify(ctx context.Context, text string) (Verdict, error) {
	if j.limiter != nil {
		if err := j.limiter.Wait(ctx); err != nil {
			j.logger.Warn("judge rate limiter wait aborted", "err", err)
			return failOpen(), nil
		}
	}

	reqBytes, err := json.Marshal(judgeRequest{Text: text})
	if err != nil {
		return Verdict{}, err
	}
	req, err := http.NewRequestWithContext(ctx, "POST", j.Host+"/verdict", bytes.NewReader(reqBytes))
	if err != nil {
		return Verdict{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "warden/"+versioninfo.Short())

	start := time.Now()
	defer func() {
		judgeAPIDuration.Observe(time.Since(start).Seconds())
	}()

	res, err := j.Client.Do(req)
	if err != nil {
		j.logger.Warn("judge request failed", "err", err)
		judgeAPICount.WithLabelValues("error").Inc()
		return failOpen(), nil
	}
	defer res.Body.Close()

	judgeAPICount.WithLabelValues(fmt.Sprint(res.StatusCode)).Inc()
	if res.StatusCode != 200 {
		j.logger.Warn("judge request failed", "statusCode", res.StatusCode)
		return failOpen(), nil
	}

	respBytes, err := io.ReadAll(res.Body)
	if err != nil {
		j.logger.Warn("failed to read judge resp body", "err", err)
		return failOpen(), nil
	}

	var respObj judgeResponse
	if err := json.Unmarshal(respBytes, &respObj); err != nil {
		j.logger.Warn("failed to parse judge resp JSON", "err", err)
		return failOpen(), nil
	}
	return j.verdictFromResponse(respObj), nil
}

func (j *Judge) verdictFromResponse(resp judgeResponse) Verdict {
	v := Verdict{
		Reason:   resp.Reason,
		Severity: clampSeverity(resp.Severity),
	}
	if resp.IsBad && v.Severity >= j.SeverityGate {
		v.IsViolation = true
		v.Penalty = j.PenaltyPerSeverity * v.Severity
	}
	return v
}

func clampSeverity(s int) int {
	if s < 0 {
		return 0
	}
	if s > 10 {
		return 10
	}
	return s
}
