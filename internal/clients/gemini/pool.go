package gemini

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	gocache "github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"sync"
	"time"
)

var ErrNoAPIKey = errors.New("no api key configured")

type Limits struct {
	MaxRequestsPerMinute float32
	MaxRequestsPerDay    float32
}

// Pool hands out one client per api key. Users may bring their own key, the default key is shared.
type Pool struct {
	mu         sync.Mutex
	defaultKey string
	model      Model
	limits     Limits
	clients    *gocache.Cache
}

func NewPool(defaultKey string, model Model, limits Limits) *Pool {
	return &Pool{
		defaultKey: defaultKey,
		model:      model,
		limits:     limits,
		clients:    gocache.New(time.Hour, 2*time.Hour),
	}
}

func (p *Pool) HasDefaultKey() bool {
	return p.defaultKey != ""
}

func (p *Pool) Client(ctx context.Context, apiKey string) (*Client, error) {

	if apiKey == "" {
		apiKey = p.defaultKey
	}
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	id := keyID(apiKey)
	if cached, found := p.clients.Get(id); found {
		p.clients.SetDefault(id, cached)
		return cached.(*Client), nil
	}

	client, err := NewClient(ctx, apiKey, p.model)
	if err != nil {
		return nil, err
	}
	client.SetMinuteRateLimit(p.limits.MaxRequestsPerMinute)
	client.SetDayRateLimit(p.limits.MaxRequestsPerDay)

	p.clients.SetDefault(id, client)
	return client, nil
}

func keyID(apiKey string) string {
	hash := sha256.Sum256([]byte(apiKey))
	return hex.EncodeToString(hash[:])
}
