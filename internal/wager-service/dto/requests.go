package dto

type CreateUserRequest struct {
	DisplayName string `json:"displayName"`
}

type DepositRequest struct {
	UserID      string `json:"userId"`
	AmountCents int64  `json:"amount_cents"`
	ExternalRef string `json:"external_ref,omitempty"` // opcional p/ rastreio
}

type WithdrawRequest struct {
	UserID      string `json:"userId"`
	AmountCents int64  `json:"amount_cents"`
	ExternalRef string `json:"external_ref,omitempty"`
}

type PlaceWagerRequest struct {
	UserID     string `json:"userId"`
	LineID     string `json:"lineId"`
	StakeCents int64  `json:"stake_cents"`
}

type SettleWagerRequest struct {
	Outcome string `json:"outcome"` // "WON" | "LOST" | "PUSH" | "VOID"
}
