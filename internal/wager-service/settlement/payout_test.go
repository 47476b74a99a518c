package settlement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/wager-ledger-poc/internal/wager-service/model"
)

func TestCalculatePayout(t *testing.T) {
	cases := []struct {
		name  string
		stake int64
		odds  int64
		want  int64
	}{
		{"underdog +150", 100, 150, 250},
		{"favorite -110", 110, -110, 210},
		{"favorite -200 half stake", 50, -200, 75},
		{"even +100", 10000, 100, 20000},
		{"minimum stake +100", 1, 100, 2},
		{"standard -110 wager", 5000, -110, 9545},
		{"rounds half up positive odds", 100, 125, 225},     // lucro 125.0 exato
		{"rounds half up fractional", 333, -110, 636},       // 333*100/110 = 302.72.. -> 303
		{"rounds boundary exactly half", 110, -200, 165},    // 110*100/200 = 55 exato
		{"long odds underdog", 2500, 450, 13750},            // lucro 112.50 -> 11250
		{"heavy favorite small stake", 100, -10000, 101},    // lucro 1.0
		{"favorite -125 exact", 100, -125, 180},             // 100*100/125 = 80 exato
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := CalculatePayout(tc.stake, tc.odds)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCalculatePayoutRejectsZeroOdds(t *testing.T) {
	// zero não existe na notação americana
	_, err := CalculatePayout(10000, 0)
	assert.ErrorIs(t, err, model.ErrInvalidOdds)
}

func TestCalculatePayoutRejectsNonPositiveStake(t *testing.T) {
	_, err := CalculatePayout(0, 150)
	assert.ErrorIs(t, err, model.ErrInvalidStake)

	_, err = CalculatePayout(-100, 150)
	assert.ErrorIs(t, err, model.ErrInvalidStake)
}

func TestCalculatePayoutAlwaysAtLeastStake(t *testing.T) {
	// payout de vitória nunca fica abaixo do stake devolvido
	for _, odds := range []int64{-100000, -110, -101, 100, 101, 110, 100000} {
		got, err := CalculatePayout(1, odds)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, got, int64(1), "odds %d", odds)
	}
}
