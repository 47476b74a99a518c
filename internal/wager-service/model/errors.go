package model

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrLineNotFound  = errors.New("line not found")
	ErrWagerNotFound = errors.New("wager not found")

	// Evento fora de estado apostável ou dentro da janela de corte
	ErrBettingClosed = errors.New("betting closed")

	ErrInsufficientBalance = errors.New("insufficient balance")

	ErrInvalidStake   = errors.New("stake must be a positive amount in cents")
	ErrInvalidOutcome = errors.New("invalid outcome")
	ErrInvalidOdds    = errors.New("invalid american odds")

	// Conflito transacional; o chamador deve repetir a operação inteira
	ErrTxConflict = errors.New("transaction conflict, retry the operation")
)

// AlreadySettledError sinaliza tentativa de liquidar uma aposta que já saiu
// de PENDING. Carrega o status terminal existente para inspeção do chamador:
// re-tentativas de graduação precisam ser observáveis, não engolidas.
type AlreadySettledError struct {
	WagerID string
	Status  WagerStatus
}

func (e *AlreadySettledError) Error() string {
	return fmt.Sprintf("wager %s already settled as %s", e.WagerID, e.Status)
}
