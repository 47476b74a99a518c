package dto

import "time"

type UserResponse struct {
	UserID       string `json:"userId"`
	DisplayName  string `json:"displayName"`
	BalanceCents int64  `json:"balance_cents"`
}

type BalanceResponse struct {
	UserID       string `json:"userId"`
	BalanceCents int64  `json:"balance_cents"`
}

type WagerResponse struct {
	WagerID       string     `json:"wagerId"`
	UserID        string     `json:"userId"`
	LineID        string     `json:"lineId"`
	StakeCents    int64      `json:"stake_cents"`
	AcceptedPrice int64      `json:"accepted_price"`
	AcceptedPoint *string    `json:"accepted_point,omitempty"`
	Status        string     `json:"status"`
	PlacedAt      time.Time  `json:"placed_at"`
	SettledAt     *time.Time `json:"settled_at,omitempty"`
}

// SettleWagerResponse expõe o delta de ledger resultante da liquidação.
// CreditCents é zero para LOST (nenhum lançamento novo é criado).
type SettleWagerResponse struct {
	WagerID     string `json:"wagerId"`
	Status      string `json:"status"`
	EntryType   string `json:"entry_type,omitempty"`
	CreditCents int64  `json:"credit_cents"`
}

type LedgerEntryResponse struct {
	EntryID     string    `json:"entryId"`
	WagerID     *string   `json:"wagerId,omitempty"`
	EntryType   string    `json:"entry_type"`
	AmountCents int64     `json:"amount_cents"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type ErrorResponse struct {
	Error  string `json:"error"`
	Status string `json:"status,omitempty"` // status terminal em AlreadySettled
}
