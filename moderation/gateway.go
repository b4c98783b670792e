package moderation

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// ChatGateway is the platform-side surface the pipeline acts through. The
// pipeline never talks to a chat platform directly; connecting, receiving
// events, and role management all live behind this interface.
//
// RevokeRestriction must be idempotent: revoking a restriction which was
// already removed (eg, manually by a human moderator) is not an error.
type ChatGateway interface {
	DeleteMessage(ctx context.Context, channelID, messageID string) error
	SendNotice(ctx context.Context, channelID, text string, autoDeleteAfter time.Duration) error
	ApplyRestriction(ctx context.Context, userID, guildID string) error
	RevokeRestriction(ctx context.Context, userID, guildID string) error
}

// MockGateway records calls for assertions and can inject failures.
// Intentionally exported for use in other packages' tests.
type MockGateway struct {
	lk         sync.Mutex
	Deleted    []string
	Notices    []string
	Restricted map[string]bool

	FailDelete  bool
	FailApply   bool
	FailRevoke  bool
	ApplyCalls  int
	RevokeCalls int
}

var _ ChatGateway = (*MockGateway)(nil)

func NewMockGateway() *MockGateway {
	return &MockGateway{
		Restricted: make(map[string]bool),
	}
}

func (g *MockGateway) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	g.lk.Lock()
	defer g.lk.Unlock()
	if g.FailDelete {
		return fmt.Errorf("mock gateway: delete denied")
	}
	g.Deleted = append(g.Deleted, channelID+"/"+messageID)
	return nil
}

func (g *MockGateway) SendNotice(ctx context.Context, channelID, text string, autoDeleteAfter time.Duration) error {
	g.lk.Lock()
	defer g.lk.Unlock()
	g.Notices = append(g.Notices, text)
	return nil
}

func (g *MockGateway) ApplyRestriction(ctx context.Context, userID, guildID string) error {
	g.lk.Lock()
	defer g.lk.Unlock()
	g.ApplyCalls++
	if g.FailApply {
		return fmt.Errorf("mock gateway: missing permission to restrict")
	}
	g.Restricted[userID] = true
	return nil
}

func (g *MockGateway) RevokeRestriction(ctx context.Context, userID, guildID string) error {
	g.lk.Lock()
	defer g.lk.Unlock()
	g.RevokeCalls++
	if g.FailRevoke {
		return fmt.Errorf("mock gateway: missing permission to unrestrict")
	}
	delete(g.Restricted, userID)
	return nil
}

func (g *MockGateway) IsRestricted(userID string) bool {
	g.lk.Lock()
	defer g.lk.Unlock()
	return g.Restricted[userID]
}

func (g *MockGateway) NoticeCount() int {
	g.lk.Lock()
	defer g.lk.Unlock()
	return len(g.Notices)
}

func (g *MockGateway) DeletedCount() int {
	g.lk.Lock()
	defer g.lk.Unlock()
	return len(g.Deleted)
}
