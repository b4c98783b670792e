package classifier

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Cached memoizes verdicts per message text, so repeated identical spam does
// not re-hit a judge backend. Fail-open verdicts are not cached: a backend
// outage should not pin "unavailable" for the TTL.
type Cached struct {
	inner Classifier
	data  *expirable.LRU[string, Verdict]
}

func NewCached(inner Classifier, capacity int, ttl time.Duration) *Cached {
	return &Cached{
		inner: inner,
		data:  expirable.NewLRU[string, Verdict](capacity, nil, ttl),
	}
}

func (c *Cached) Classify(ctx context.Context, text string) (Verdict, error) {
	if v, ok := c.data.Get(text); ok {
		verdictCacheHits.WithLabelValues("hit").Inc()
		return v, nil
	}
	verdictCacheHits.WithLabelValues("miss").Inc()
	v, err := c.inner.Classify(ctx, text)
	if err != nil {
		return v, err
	}
	if v.Reason != ReasonUnavailable {
		c.data.Add(text, v)
	}
	return v, nil
}
