package settlement

import "github.com/radieske/wager-ledger-poc/internal/wager-service/model"

// Delta descreve o efeito contábil de uma liquidação: o lançamento de
// crédito a criar e o acréscimo de saldo correspondente.
type Delta struct {
	EntryType   model.EntryType
	AmountCents int64
}

// Resolve é a única função de transição da máquina de estados de aposta.
// Decide, a partir do estado atual e do resultado, qual crédito aplicar:
//
//	WON       -> PAYOUT_CREDIT de CalculatePayout(stake, acceptedPrice)
//	LOST      -> nenhum lançamento (o débito do stake na aceitação já reflete a perda)
//	PUSH/VOID -> REFUND_CREDIT do stake original, sem lucro
//
// Retorna nil Delta quando não há crédito a criar. Estados terminais são
// rejeitados com AlreadySettledError; todas as chamadas de liquidação,
// manuais ou da varredura automática, passam por aqui.
func Resolve(w *model.Wager, outcome model.Outcome) (*Delta, error) {
	if w.Status != model.WagerPending {
		return nil, &model.AlreadySettledError{WagerID: w.ID, Status: w.Status}
	}

	switch outcome {
	case model.OutcomeWon:
		payout, err := CalculatePayout(w.StakeCents, w.AcceptedPrice)
		if err != nil {
			return nil, err
		}
		return &Delta{EntryType: model.EntryPayoutCredit, AmountCents: payout}, nil
	case model.OutcomeLost:
		return nil, nil
	case model.OutcomePush, model.OutcomeVoid:
		return &Delta{EntryType: model.EntryRefundCredit, AmountCents: w.StakeCents}, nil
	default:
		return nil, model.ErrInvalidOutcome
	}
}
