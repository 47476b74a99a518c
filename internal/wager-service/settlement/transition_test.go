package settlement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/wager-ledger-poc/internal/wager-service/model"
)

func pendingWager(stake, price int64) *model.Wager {
	return &model.Wager{
		ID:            "w1",
		UserID:        "u1",
		LineID:        "l1",
		StakeCents:    stake,
		AcceptedPrice: price,
		Status:        model.WagerPending,
	}
}

func TestResolveWonCreatesPayoutCredit(t *testing.T) {
	w := pendingWager(5000, -110)

	delta, err := Resolve(w, model.OutcomeWon)
	require.NoError(t, err)
	require.NotNil(t, delta)

	assert.Equal(t, model.EntryPayoutCredit, delta.EntryType)
	assert.Equal(t, int64(9545), delta.AmountCents) // 5000 + round(5000*100/110)
}

func TestResolveLostCreatesNothing(t *testing.T) {
	w := pendingWager(5000, -110)

	delta, err := Resolve(w, model.OutcomeLost)
	require.NoError(t, err)
	// o débito do stake na aceitação já é a perda; nenhum crédito a criar
	assert.Nil(t, delta)
}

func TestResolvePushRefundsStakeOnly(t *testing.T) {
	w := pendingWager(5000, 240)

	delta, err := Resolve(w, model.OutcomePush)
	require.NoError(t, err)
	require.NotNil(t, delta)

	assert.Equal(t, model.EntryRefundCredit, delta.EntryType)
	assert.Equal(t, int64(5000), delta.AmountCents)
}

func TestResolveVoidRefundsStakeOnly(t *testing.T) {
	w := pendingWager(1234, -150)

	delta, err := Resolve(w, model.OutcomeVoid)
	require.NoError(t, err)
	require.NotNil(t, delta)

	assert.Equal(t, model.EntryRefundCredit, delta.EntryType)
	assert.Equal(t, int64(1234), delta.AmountCents)
}

func TestResolveRejectsTerminalStates(t *testing.T) {
	for _, st := range []model.WagerStatus{model.WagerWon, model.WagerLost, model.WagerPush, model.WagerVoid} {
		t.Run(string(st), func(t *testing.T) {
			w := pendingWager(5000, -110)
			w.Status = st

			_, err := Resolve(w, model.OutcomeWon)
			require.Error(t, err)

			var settled *model.AlreadySettledError
			require.ErrorAs(t, err, &settled)
			assert.Equal(t, "w1", settled.WagerID)
			assert.Equal(t, st, settled.Status)
		})
	}
}

func TestResolveRejectsUnknownOutcome(t *testing.T) {
	w := pendingWager(5000, -110)

	_, err := Resolve(w, model.Outcome("CANCELED"))
	assert.ErrorIs(t, err, model.ErrInvalidOutcome)
}
