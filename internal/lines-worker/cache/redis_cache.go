package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache guarda a cotação mais recente por (evento, mercado, seleção),
// com TTL, para a API de leitura de linhas.
type RedisCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisCache(c *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{Client: c, TTL: ttl}
}

// CurrentLine é o payload cacheado da cotação corrente.
type CurrentLine struct {
	LineID     string    `json:"lineId"`
	EventID    string    `json:"eventId"`
	MarketKind string    `json:"market_kind"`
	Selection  string    `json:"selection"`
	Point      *string   `json:"point,omitempty"`
	Price      int64     `json:"price"`
	CapturedAt time.Time `json:"captured_at"`
}

// key gera a chave Redis da cotação corrente.
func key(eventID, marketKind, selection string) string {
	return "line:current:" + eventID + ":" + marketKind + ":" + selection
}

// SetCurrent armazena a cotação corrente com o TTL configurado.
func (r *RedisCache) SetCurrent(ctx context.Context, l CurrentLine) error {
	b, err := json.Marshal(l)
	if err != nil {
		return err
	}
	return r.Client.Set(ctx, key(l.EventID, l.MarketKind, l.Selection), b, r.TTL).Err()
}
