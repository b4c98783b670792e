package classifier

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const verdictSystemPrompt = `You are a chat moderation judge. Decide whether the user message below violates chat policy (harassment, hate, threats, sexual content aimed at the channel, spam). Respond with ONLY a JSON object, no prose: {"is_bad": bool, "reason": string, "severity": int between 1 and 10}`

// OpenAIJudge asks an OpenAI chat model for a verdict in the same JSON schema
// the HTTP judge speaks. Same fail-open policy: API errors and unparseable
// completions are non-violations.
type OpenAIJudge struct {
	client  *openai.Client
	model   string
	timeout time.Duration

	SeverityGate       int
	PenaltyPerSeverity int

	logger *slog.Logger
}

func NewOpenAIJudge(apiKey, model string, timeout time.Duration) *OpenAIJudge {
	if model == "" {
		model = openai.GPT4oMini
	}
	if timeout <= 0 {
		timeout = DefaultJudgeTimeout
	}
	return &OpenAIJudge{
		client:  openai.NewClient(apiKey),
		model:   model,
		timeout: timeout,
		// unlike the HTTP judge, this provider trusts any is_bad verdict
		SeverityGate:       1,
		PenaltyPerSeverity: DefaultPenaltyPerSeverity,
		logger:             slog.Default().With("system", "openai-judge"),
	}
}

// Points the client at a different API endpoint. Used for tests and for
// OpenAI-compatible local inference servers.
func NewOpenAIJudgeWithConfig(config openai.ClientConfig, model string, timeout time.Duration) *OpenAIJudge {
	j := NewOpenAIJudge("", model, timeout)
	j.client = openai.NewClientWithConfig(config)
	return j
}

func (o *OpenAIJudge) Classify(ctx context.Context, text string) (Verdict, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	start := time.Now()
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: verdictSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		Temperature: 0,
	})
	openaiAPIDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		o.logger.Warn("openai verdict call failed", "err", err)
		return failOpen(), nil
	}
	if len(resp.Choices) == 0 {
		o.logger.Warn("openai returned no choices")
		return failOpen(), nil
	}

	var respObj judgeResponse
	raw := extractJSONObject(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(raw), &respObj); err != nil {
		o.logger.Warn("failed to parse openai verdict JSON", "err", err, "content", resp.Choices[0].Message.Content)
		return failOpen(), nil
	}

	v := Verdict{
		Reason:   respObj.Reason,
		Severity: clampSeverity(respObj.Severity),
	}
	if respObj.IsBad && v.Severity >= o.SeverityGate {
		v.IsViolation = true
		v.Penalty = o.PenaltyPerSeverity * v.Severity
	}
	return v, nil
}

// Chat models sometimes wrap JSON in markdown fences or prose despite
// instructions; pull out the first top-level object.
func extractJSONObject(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return s
	}
	return s[start : end+1]
}
