package model

import "time"

// Status do evento esportivo. Apostas só são aceitas em SCHEDULED.
type EventStatus string

const (
	EventScheduled EventStatus = "SCHEDULED"
	EventLive      EventStatus = "LIVE"
	EventFinal     EventStatus = "FINAL"
	EventCancelled EventStatus = "CANCELLED"
)

// Tipo de mercado de aposta.
type MarketKind string

const (
	MarketSpread    MarketKind = "SPREAD"
	MarketTotal     MarketKind = "TOTAL"
	MarketMoneyline MarketKind = "MONEYLINE"
)

// Status da aposta. PENDING é o único estado inicial; os demais são
// terminais e nunca admitem nova transição.
type WagerStatus string

const (
	WagerPending WagerStatus = "PENDING"
	WagerWon     WagerStatus = "WON"
	WagerLost    WagerStatus = "LOST"
	WagerPush    WagerStatus = "PUSH"
	WagerVoid    WagerStatus = "VOID"
)

// Terminal indica se o status não admite mais transições.
func (s WagerStatus) Terminal() bool {
	switch s {
	case WagerWon, WagerLost, WagerPush, WagerVoid:
		return true
	}
	return false
}

// Resultado fornecido pelo colaborador de graduação.
type Outcome string

const (
	OutcomeWon  Outcome = "WON"
	OutcomeLost Outcome = "LOST"
	OutcomePush Outcome = "PUSH"
	OutcomeVoid Outcome = "VOID"
)

// Valid rejeita qualquer valor fora do enum de quatro resultados.
func (o Outcome) Valid() bool {
	switch o {
	case OutcomeWon, OutcomeLost, OutcomePush, OutcomeVoid:
		return true
	}
	return false
}

// Status retorna o status terminal correspondente ao resultado.
func (o Outcome) Status() WagerStatus { return WagerStatus(o) }

// Tipo de lançamento no ledger.
type EntryType string

const (
	EntryStakeDebit   EntryType = "STAKE_DEBIT"
	EntryPayoutCredit EntryType = "PAYOUT_CREDIT"
	EntryRefundCredit EntryType = "REFUND_CREDIT"
	EntryDeposit      EntryType = "DEPOSIT"
	EntryWithdrawal   EntryType = "WITHDRAWAL"
)

// User é o titular da conta. BalanceCents é um total materializado,
// mantido em sincronia com o ledger por construção: toda mutação de saldo
// acontece na mesma transação dos lançamentos que a justificam.
type User struct {
	ID           string
	DisplayName  string
	BalanceCents int64
	CreatedAt    time.Time
}

// Event é a partida sobre a qual existem mercados.
type Event struct {
	ID       string
	HomeTeam string
	AwayTeam string
	StartsAt time.Time
	Status   EventStatus
}

// Line é uma cotação imutável com carimbo de tempo. Nunca é atualizada:
// uma nova cotação do provedor vira uma nova linha.
type Line struct {
	ID         string
	MarketID   string
	EventID    string
	Selection  string
	Point      *string // decimal como string, ex: "-3.5"; nil para moneyline
	Price      int64   // odds americanas
	Source     string
	CapturedAt time.Time
}

// Wager é a aposta de um usuário contra uma Line, congelada na aceitação.
// AcceptedPrice e AcceptedPoint são copiados da Line naquele instante e
// nunca relidos; re-cotações posteriores não afetam apostas já feitas.
type Wager struct {
	ID            string
	UserID        string
	LineID        string
	StakeCents    int64
	AcceptedPrice int64
	AcceptedPoint *string
	Status        WagerStatus
	PlacedAt      time.Time
	SettledAt     *time.Time
}

// LedgerEntry é um registro contábil imutável de um evento que afeta saldo.
// Para todo usuário, a soma dos valores dos lançamentos é igual ao saldo.
type LedgerEntry struct {
	ID          string
	UserID      string
	WagerID     *string // nil para depósitos/saques
	Type        EntryType
	AmountCents int64 // com sinal
	Description string
	CreatedAt   time.Time
}
