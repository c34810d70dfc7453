package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"TranscriptDigest/internal/ports"
)

// Generator memoises condensations per passage and decoding settings.
// Failures are not cached.
type Generator struct {
	next  ports.Generator
	store *gocache.Cache
}

var _ ports.Generator = (*Generator)(nil)

// NewGenerator wraps next; ttl <= 0 keeps entries until the process exits.
func NewGenerator(next ports.Generator, ttl time.Duration) *Generator {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	return &Generator{next: next, store: gocache.New(ttl, 2*ttl)}
}

// Generate returns the cached text for an identical request or delegates.
func (g *Generator) Generate(ctx context.Context, req ports.GenerateRequest) (string, error) {
	key := requestKey(req)
	if v, ok := g.store.Get(key); ok {
		return v.(string), nil
	}

	out, err := g.next.Generate(ctx, req)
	if err != nil {
		return "", err
	}
	g.store.Set(key, out, gocache.DefaultExpiration)
	return out, nil
}

// Len is the number of live entries.
func (g *Generator) Len() int {
	return g.store.ItemCount()
}

func requestKey(req ports.GenerateRequest) string {
	h := sha256.New()
	fmt.Fprintf(h, "%d|%d|%d|%t|%d|", req.MinLength, req.MaxLength, req.Beams, req.EarlyStopping, req.MaxInputTokens)
	h.Write([]byte(req.Passage))
	return hex.EncodeToString(h.Sum(nil))
}
