package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/radieske/wager-ledger-poc/internal/wager-service/model"
	"github.com/radieske/wager-ledger-poc/internal/wager-service/settlement"
)

// Memory implementa Store com mapas em memória, sob um único mutex.
// O mutex faz o papel das transações do Postgres: cada operação mutante
// enxerga e aplica seus efeitos de forma atômica.
type Memory struct {
	mu      sync.Mutex
	buffer  time.Duration
	users   map[string]*model.User
	events  map[string]*model.Event
	lines   map[string]*model.Line
	wagers  map[string]*model.Wager
	ledger  []model.LedgerEntry
	nowFunc func() time.Time
}

// NewMemory cria o store em memória com a janela de corte informada.
func NewMemory(acceptanceBuffer time.Duration) *Memory {
	return &Memory{
		buffer:  acceptanceBuffer,
		users:   make(map[string]*model.User),
		events:  make(map[string]*model.Event),
		lines:   make(map[string]*model.Line),
		wagers:  make(map[string]*model.Wager),
		nowFunc: time.Now,
	}
}

// SeedEvent registra um evento (uso em testes e desenvolvimento local).
func (s *Memory) SeedEvent(e model.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := e
	s.events[e.ID] = &cp
}

// SeedLine registra uma linha apontando para um evento já existente.
func (s *Memory) SeedLine(l model.Line) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := l
	s.lines[l.ID] = &cp
}

func (s *Memory) CreateUser(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.nowFunc()
	}
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *Memory) GetUser(_ context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *Memory) ListUserIDs(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.users))
	for id := range s.users {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *Memory) Deposit(_ context.Context, userID string, amountCents int64, externalRef string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return 0, model.ErrUserNotFound
	}

	s.appendEntryLocked(userID, nil, model.EntryDeposit, amountCents, "deposit:"+externalRef)
	u.BalanceCents += amountCents
	return u.BalanceCents, nil
}

func (s *Memory) Withdraw(_ context.Context, userID string, amountCents int64, externalRef string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return 0, model.ErrUserNotFound
	}
	if u.BalanceCents < amountCents {
		return 0, model.ErrInsufficientBalance
	}

	s.appendEntryLocked(userID, nil, model.EntryWithdrawal, -amountCents, "withdraw:"+externalRef)
	u.BalanceCents -= amountCents
	return u.BalanceCents, nil
}

func (s *Memory) PlaceWager(_ context.Context, userID, lineID string, stakeCents int64) (*model.Wager, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	line, ok := s.lines[lineID]
	if !ok {
		return nil, model.ErrLineNotFound
	}

	ev, ok := s.events[line.EventID]
	if !ok {
		return nil, model.ErrLineNotFound
	}
	if ev.Status != model.EventScheduled {
		return nil, model.ErrBettingClosed
	}

	now := s.nowFunc()
	// o início precisa estar a mais de buffer de distância: perto demais do
	// kickoff não dá pra garantir o frescor da cotação
	if !ev.StartsAt.After(now.Add(s.buffer)) {
		return nil, model.ErrBettingClosed
	}

	u, ok := s.users[userID]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	if u.BalanceCents < stakeCents {
		return nil, model.ErrInsufficientBalance
	}

	w := &model.Wager{
		ID:            uuid.NewString(),
		UserID:        userID,
		LineID:        lineID,
		StakeCents:    stakeCents,
		AcceptedPrice: line.Price,
		AcceptedPoint: line.Point,
		Status:        model.WagerPending,
		PlacedAt:      now,
	}
	s.wagers[w.ID] = w

	s.appendEntryLocked(userID, &w.ID, model.EntryStakeDebit, -stakeCents, "stake:"+w.ID)
	u.BalanceCents -= stakeCents

	cp := *w
	return &cp, nil
}

func (s *Memory) SettleWager(_ context.Context, wagerID string, outcome model.Outcome) (*model.Wager, *model.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.wagers[wagerID]
	if !ok {
		return nil, nil, model.ErrWagerNotFound
	}

	delta, err := settlement.Resolve(w, outcome)
	if err != nil {
		return nil, nil, err
	}

	now := s.nowFunc()
	w.Status = outcome.Status()
	w.SettledAt = &now

	var entry *model.LedgerEntry
	if delta != nil {
		entry = s.appendEntryLocked(w.UserID, &w.ID, delta.EntryType, delta.AmountCents, descriptionFor(delta.EntryType, w.ID))
		s.users[w.UserID].BalanceCents += delta.AmountCents
	}

	cp := *w
	return &cp, entry, nil
}

func (s *Memory) GetWager(_ context.Context, id string) (*model.Wager, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.wagers[id]
	if !ok {
		return nil, model.ErrWagerNotFound
	}
	cp := *w
	return &cp, nil
}

func (s *Memory) ListWagersByUser(_ context.Context, userID string) ([]model.Wager, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.Wager
	for _, w := range s.wagers {
		if w.UserID == userID {
			out = append(out, *w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlacedAt.After(out[j].PlacedAt) })
	return out, nil
}

func (s *Memory) ListLedgerByUser(_ context.Context, userID string) ([]model.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.LedgerEntry
	for _, e := range s.ledger {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Memory) SumLedgerByUser(_ context.Context, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sum int64
	for _, e := range s.ledger {
		if e.UserID == userID {
			sum += e.AmountCents
		}
	}
	return sum, nil
}

// appendEntryLocked anexa um lançamento imutável; chamador segura o mutex.
func (s *Memory) appendEntryLocked(userID string, wagerID *string, t model.EntryType, amount int64, desc string) *model.LedgerEntry {
	e := model.LedgerEntry{
		ID:          uuid.NewString(),
		UserID:      userID,
		WagerID:     wagerID,
		Type:        t,
		AmountCents: amount,
		Description: desc,
		CreatedAt:   s.nowFunc(),
	}
	s.ledger = append(s.ledger, e)
	cp := e
	return &cp
}

func descriptionFor(t model.EntryType, wagerID string) string {
	switch t {
	case model.EntryPayoutCredit:
		return "payout:" + wagerID
	case model.EntryRefundCredit:
		return "refund:" + wagerID
	default:
		return string(t) + ":" + wagerID
	}
}
