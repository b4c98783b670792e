package classifier

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func verdictServer(status int, body string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
}

func TestJudgeViolation(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	srv := verdictServer(200, `{"is_bad": true, "reason": "harassment", "severity": 9}`)
	defer srv.Close()

	j := NewJudge(srv.URL, time.Second, 0)
	v, err := j.Classify(ctx, "some nasty message text")
	assert.NoError(err)
	assert.True(v.IsViolation)
	assert.Equal("harassment", v.Reason)
	assert.Equal(9, v.Severity)
	assert.Equal(45, v.Penalty)
}

func TestJudgeSeverityGate(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	// is_bad, but below the gate: advisory only
	srv := verdictServer(200, `{"is_bad": true, "reason": "mildly rude", "severity": 5}`)
	defer srv.Close()

	j := NewJudge(srv.URL, time.Second, 0)
	v, err := j.Classify(ctx, "some borderline message")
	assert.NoError(err)
	assert.False(v.IsViolation)
	assert.Equal(5, v.Severity)
	assert.Equal(0, v.Penalty)
}

func TestJudgeFailOpen(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	cases := []struct {
		name string
		srv  *httptest.Server
	}{
		{"server error", verdictServer(500, `internal`)},
		{"malformed body", verdictServer(200, `{"is_bad": tru`)},
	}
	for _, c := range cases {
		defer c.srv.Close()
		j := NewJudge(c.srv.URL, time.Second, 0)
		v, err := j.Classify(ctx, "anything at all")
		assert.NoError(err, c.name)
		assert.False(v.IsViolation, c.name)
		assert.Equal(0, v.Severity, c.name)
		assert.Equal(ReasonUnavailable, v.Reason, c.name)
	}
}

func TestJudgeTimeout(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		fmt.Fprint(w, `{"is_bad": true, "reason": "too late", "severity": 10}`)
	}))
	defer srv.Close()

	j := NewJudge(srv.URL, 50*time.Millisecond, 0)
	start := time.Now()
	v, err := j.Classify(ctx, "a message the judge never answers for")
	assert.NoError(err)
	assert.False(v.IsViolation)
	assert.Equal(ReasonUnavailable, v.Reason)
	assert.Less(time.Since(start), 400*time.Millisecond)
}

func TestJudgeUnreachable(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	j := NewJudge("http://127.0.0.1:1", 100*time.Millisecond, 0)
	v, err := j.Classify(ctx, "message for a judge that is down")
	assert.NoError(err)
	assert.False(v.IsViolation)
	assert.Equal(ReasonUnavailable, v.Reason)
}
