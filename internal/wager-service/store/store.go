// Package store define a interface de persistência do wager-service.
// Postgres é a fonte de verdade; a implementação em memória serve testes
// e desenvolvimento local.
package store

import (
	"context"

	"github.com/radieske/wager-ledger-poc/internal/wager-service/model"
)

// Store agrupa as operações atômicas sobre usuários, apostas e ledger.
// As duas operações mutantes centrais (PlaceWager, SettleWager) executam
// todos os seus efeitos numa única unidade de trabalho: ou tudo acontece,
// ou nada. Nenhum outro caminho de escrita em saldo/ledger existe fora
// desta interface.
type Store interface {
	// --- Usuários ---

	// CreateUser registra um usuário com saldo zero.
	CreateUser(ctx context.Context, u *model.User) error

	// GetUser retorna o usuário pelo id.
	GetUser(ctx context.Context, id string) (*model.User, error)

	// ListUserIDs retorna todos os ids de usuário (usado pela auditoria).
	ListUserIDs(ctx context.Context) ([]string, error)

	// Deposit credita saldo e registra lançamento DEPOSIT na mesma transação.
	Deposit(ctx context.Context, userID string, amountCents int64, externalRef string) (newBalance int64, err error)

	// Withdraw debita saldo e registra lançamento WITHDRAWAL na mesma transação.
	// Falha com ErrInsufficientBalance se o saldo não cobre o valor.
	Withdraw(ctx context.Context, userID string, amountCents int64, externalRef string) (newBalance int64, err error)

	// --- Apostas ---

	// PlaceWager valida e admite uma aposta contra uma linha:
	// linha existe, evento SCHEDULED, início a mais de buffer de distância,
	// saldo suficiente. Cria a aposta PENDING com preço/ponto congelados,
	// o lançamento STAKE_DEBIT e o débito de saldo, tudo ou nada.
	PlaceWager(ctx context.Context, userID, lineID string, stakeCents int64) (*model.Wager, error)

	// SettleWager transita a aposta para fora de PENDING exatamente uma vez,
	// aplicando o crédito decidido por settlement.Resolve na mesma unidade
	// atômica da troca de status. Retorna o lançamento criado (nil p/ LOST).
	// Tentativas sobre aposta não-PENDING falham com AlreadySettledError.
	SettleWager(ctx context.Context, wagerID string, outcome model.Outcome) (*model.Wager, *model.LedgerEntry, error)

	// GetWager retorna a aposta pelo id.
	GetWager(ctx context.Context, id string) (*model.Wager, error)

	// ListWagersByUser retorna as apostas de um usuário, mais recentes primeiro.
	ListWagersByUser(ctx context.Context, userID string) ([]model.Wager, error)

	// --- Ledger (append-only) ---

	// ListLedgerByUser retorna os lançamentos de um usuário, mais antigos primeiro.
	ListLedgerByUser(ctx context.Context, userID string) ([]model.LedgerEntry, error)

	// SumLedgerByUser soma os valores dos lançamentos de um usuário.
	// Base da invariante saldo == soma(ledger).
	SumLedgerByUser(ctx context.Context, userID string) (int64, error)
}
