package events

import "time"

// Evento emitido após uma aposta sair de PENDING.
type WagerSettled struct {
	WagerID     string    `json:"wagerId"`
	UserID      string    `json:"userId"`
	Outcome     string    `json:"outcome"` // "WON" | "LOST" | "PUSH" | "VOID"
	PayoutCents int64     `json:"payout_cents"` // 0 para LOST
	Ts          time.Time `json:"ts"`
}
