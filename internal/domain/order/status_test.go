package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus("On the Way")
	require.NoError(t, err)
	assert.Equal(t, StatusOnTheWay, st)

	_, err = ParseStatus("Teleported")
	require.Error(t, err)
}

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from    Status
		to      Status
		allowed bool
	}{
		{StatusNew, StatusOrderReceived, true},
		{StatusOrderReceived, StatusPreparing, true},
		{StatusPreparing, StatusOnTheWay, true},
		{StatusPreparing, StatusPickupReady, true},
		{StatusOnTheWay, StatusDelivered, true},
		{StatusPickupReady, StatusPickedUp, true},

		{StatusNew, StatusPreparing, false},
		{StatusNew, StatusDelivered, false},
		{StatusOnTheWay, StatusPickedUp, false},
		{StatusDelivered, StatusNew, false},

		// Cancellation is allowed from any non-terminal status only.
		{StatusNew, StatusCancelled, true},
		{StatusPreparing, StatusCancelled, true},
		{StatusOnTheWay, StatusCancelled, true},
		{StatusDelivered, StatusCancelled, false},
		{StatusPickedUp, StatusCancelled, false},
		{StatusCancelled, StatusCancelled, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestStatusTerminal(t *testing.T) {
	assert.True(t, StatusDelivered.Terminal())
	assert.True(t, StatusPickedUp.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.False(t, StatusNew.Terminal())
	assert.False(t, StatusPreparing.Terminal())
}
