package events

import "time"

// Evento publicado no tópico "line_updates".
// Cada mensagem é uma cotação nova e imutável; re-cotações do mesmo
// mercado/seleção geram novas mensagens, nunca atualizações.
type LineUpdate struct {
	EventID     string    `json:"event_id"`
	HomeTeam    string    `json:"home_team"`
	AwayTeam    string    `json:"away_team"`
	StartsAt    time.Time `json:"starts_at"`
	EventStatus string    `json:"event_status"` // "SCHEDULED" | "LIVE" | "FINAL" | "CANCELLED"

	MarketKind string  `json:"market_kind"` // "SPREAD" | "TOTAL" | "MONEYLINE"
	Selection  string  `json:"selection"`   // "home" | "away" | "over" | "under"
	Point      *string `json:"point,omitempty"` // decimal como string, ex: "-3.5"
	Price      int64   `json:"price"`           // odds americanas (inteiro com sinal)

	Source     string    `json:"source"` // "provider-simulator"
	CapturedAt time.Time `json:"captured_at"`
}
