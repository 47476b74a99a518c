package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWagerStatusTerminal(t *testing.T) {
	assert.False(t, WagerPending.Terminal())
	for _, s := range []WagerStatus{WagerWon, WagerLost, WagerPush, WagerVoid} {
		assert.True(t, s.Terminal(), string(s))
	}
}

func TestOutcomeValid(t *testing.T) {
	for _, o := range []Outcome{OutcomeWon, OutcomeLost, OutcomePush, OutcomeVoid} {
		assert.True(t, o.Valid(), string(o))
	}
	assert.False(t, Outcome("").Valid())
	assert.False(t, Outcome("CANCELED").Valid())
	assert.False(t, Outcome("won").Valid()) // enum é caixa alta
}

func TestOutcomeMapsToTerminalStatus(t *testing.T) {
	assert.Equal(t, WagerWon, OutcomeWon.Status())
	assert.Equal(t, WagerPush, OutcomePush.Status())
	assert.True(t, OutcomeVoid.Status().Terminal())
}

func TestAlreadySettledErrorMessage(t *testing.T) {
	err := &AlreadySettledError{WagerID: "w1", Status: WagerLost}
	assert.Equal(t, "wager w1 already settled as LOST", err.Error())
}
