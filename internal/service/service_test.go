package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/product_hub/internal/db"
	"github.com/Skotchmaster/product_hub/internal/events"
	"github.com/Skotchmaster/product_hub/internal/repo"
	"github.com/Skotchmaster/product_hub/internal/search"
	"github.com/Skotchmaster/product_hub/internal/tokens"
)

type fakePublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, _ string, _ string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if ev, ok := event.(events.Event); ok {
		p.events = append(p.events, ev)
	}
	return p.err
}

func (p *fakePublisher) Close() error { return nil }

func (p *fakePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Type
	}
	return out
}

type fakeIndex struct {
	mu      sync.Mutex
	docs    map[uint]search.Document
	err     error
	results []uint
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{docs: map[uint]search.Document{}}
}

func (x *fakeIndex) Index(_ context.Context, doc search.Document) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.err != nil {
		return x.err
	}
	x.docs[doc.ID] = doc
	return nil
}

func (x *fakeIndex) Delete(_ context.Context, id uint) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.err != nil {
		return x.err
	}
	delete(x.docs, id)
	return nil
}

func (x *fakeIndex) Search(context.Context, string, int, int) (int64, []uint, error) {
	if x.err != nil {
		return 0, nil, x.err
	}
	return int64(len(x.results)), x.results, nil
}

var errBroken = errors.New("broken")

type testEnv struct {
	repo    *repo.GormRepo
	tokens  *tokens.Service
	pub     *fakePublisher
	index   *fakeIndex
	auth    *AuthService
	catalog *CatalogService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gdb, err := db.Open(context.Background(), "sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })

	r := repo.New(gdb)
	tok := tokens.New(tokens.Config{
		AccessSecret:  []byte("access"),
		RefreshSecret: []byte("refresh"),
		AccessTTL:     5 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
	}, r)
	pub := &fakePublisher{}
	idx := newFakeIndex()

	return &testEnv{
		repo:    r,
		tokens:  tok,
		pub:     pub,
		index:   idx,
		auth:    &AuthService{Repo: r, Tokens: tok, Events: pub},
		catalog: &CatalogService{Repo: r, Index: idx, Events: pub},
	}
}
