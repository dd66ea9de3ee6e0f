package service_test

import (
	"context"
	"sync"

	"github.com/zemenay/techpulse-api/internal/event"
	"github.com/zemenay/techpulse-api/internal/repository/repotest"
	"github.com/zemenay/techpulse-api/internal/service"
	"github.com/zemenay/techpulse-api/pkg/auth"
	"go.uber.org/zap"
)

// recordingPublisher 记录发布的事件
type recordingPublisher struct {
	mu     sync.Mutex
	events []event.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e event.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Events() []event.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]event.Event(nil), p.events...)
}

type interactionEnv struct {
	store     *repotest.Store
	publisher *recordingPublisher
	svc       *service.InteractionService
}

func newInteractionEnv(words ...string) *interactionEnv {
	store := repotest.NewStore()
	pub := &recordingPublisher{}
	svc := service.NewInteractionService(
		store.Articles(),
		store.Comments(),
		store.Likes(),
		service.NewContentFilter(words),
		pub,
		zap.NewNop().Sugar(),
	)
	return &interactionEnv{store: store, publisher: pub, svc: svc}
}

func user(id uint) *auth.Identity {
	return &auth.Identity{UserID: id, Role: "user"}
}

func admin(id uint) *auth.Identity {
	return &auth.Identity{UserID: id, Role: "admin"}
}

func ptr[T any](v T) *T {
	return &v
}
