package events

type WagerPlaced struct {
	WagerID       string  `json:"wager_id"`
	UserID        string  `json:"user_id"`
	LineID        string  `json:"line_id"`
	StakeCents    int64   `json:"stake_cents"`
	AcceptedPrice int64   `json:"accepted_price"` // odds americanas congeladas na aceitação
	AcceptedPoint *string `json:"accepted_point,omitempty"`
	TsUnixMs      int64   `json:"ts_unix_ms"`
}
