// Package settlement concentra as regras puras de liquidação: o cálculo de
// payout sobre odds americanas e a transição única de estado da aposta.
// Nenhuma função aqui tem efeito colateral; os stores aplicam o resultado
// dentro das suas unidades atômicas.
package settlement

import "github.com/radieske/wager-ledger-poc/internal/wager-service/model"

// CalculatePayout converte stake + odds americanas em payout total
// (lucro + stake), em centavos.
//
//	odds > 0: payout = round(stake * odds / 100) + stake
//	odds < 0: payout = round(stake * 100 / |odds|) + stake
//
// Arredondamento half-up em aritmética inteira exata; qualquer desvio aqui
// vira deriva acumulada no ledger ao longo de muitas liquidações.
// Odds igual a zero não existe na convenção americana.
func CalculatePayout(stakeCents int64, americanOdds int64) (int64, error) {
	if stakeCents <= 0 {
		return 0, model.ErrInvalidStake
	}
	if americanOdds == 0 {
		return 0, model.ErrInvalidOdds
	}

	var num, den int64
	if americanOdds > 0 {
		num, den = stakeCents*americanOdds, 100
	} else {
		num, den = stakeCents*100, -americanOdds
	}

	profit := (num + den/2) / den // half-up: soma metade do divisor antes de truncar
	return profit + stakeCents, nil
}
