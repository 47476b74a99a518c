package dto

// Event representa um evento esportivo (ex: partida de futebol)
type Event struct {
	EventID  string `json:"eventId"`
	HomeTeam string `json:"homeTeam"`
	AwayTeam string `json:"awayTeam"`
	StartsAt string `json:"startsAt"`
	Status   string `json:"status"`
}

// Line representa a cotação corrente de uma seleção de um mercado
type Line struct {
	LineID     string  `json:"lineId"`
	EventID    string  `json:"eventId"`
	MarketKind string  `json:"market_kind"`
	Selection  string  `json:"selection"`
	Point      *string `json:"point,omitempty"`
	Price      int64   `json:"price"` // odds americanas
	CapturedAt string  `json:"capturedAt"`
}
