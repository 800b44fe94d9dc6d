package order

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feastly/feastly/internal/domain/cart"
)

func snapshotLine(dishID int64, qty int, price string) cart.Line {
	return cart.Line{DishID: dishID, Quantity: qty, UnitPrice: decimal.RequireFromString(price)}
}

func TestAssemble_Total(t *testing.T) {
	o, err := Assemble(1, 7, StatusNew, []cart.Line{
		snapshotLine(10, 2, "9.50"),
		snapshotLine(11, 1, "3.25"),
	})
	require.NoError(t, err)

	assert.True(t, o.Total.Equal(decimal.RequireFromString("22.25")), "total = %s", o.Total)
	require.Len(t, o.Lines, 2)
	assert.True(t, o.Lines[0].Subtotal().Equal(decimal.RequireFromString("19.00")))
	assert.True(t, o.Lines[1].Subtotal().Equal(decimal.RequireFromString("3.25")))
}

func TestAssemble_RoundsToCents(t *testing.T) {
	o, err := Assemble(1, 7, StatusNew, []cart.Line{
		snapshotLine(10, 3, "3.333"),
	})
	require.NoError(t, err)

	assert.True(t, o.Total.Equal(decimal.RequireFromString("10.00")), "total = %s", o.Total)
}

func TestAssemble_MergesDuplicateDishRows(t *testing.T) {
	o, err := Assemble(1, 7, StatusNew, []cart.Line{
		snapshotLine(10, 1, "9.50"),
		snapshotLine(11, 1, "3.25"),
		snapshotLine(10, 2, "9.50"),
	})
	require.NoError(t, err)

	// One line per dish, quantities summed, first-seen order kept.
	require.Len(t, o.Lines, 2)
	assert.Equal(t, int64(10), o.Lines[0].DishID)
	assert.Equal(t, 3, o.Lines[0].Quantity)
	assert.Equal(t, int64(11), o.Lines[1].DishID)
	assert.True(t, o.Total.Equal(decimal.RequireFromString("31.75")), "total = %s", o.Total)
}

func TestAssemble_EmptySnapshot(t *testing.T) {
	_, err := Assemble(1, 7, StatusNew, nil)
	require.ErrorIs(t, err, ErrEmptyCart)
}

func TestAssemble_InvalidQuantity(t *testing.T) {
	_, err := Assemble(1, 7, StatusNew, []cart.Line{snapshotLine(10, -1, "9.50")})

	var iqErr *InvalidQuantityError
	require.ErrorAs(t, err, &iqErr)
	assert.Equal(t, int64(10), iqErr.DishID)
	assert.Equal(t, -1, iqErr.Quantity)
}

func TestAssemble_NegativePrice(t *testing.T) {
	_, err := Assemble(1, 7, StatusNew, []cart.Line{snapshotLine(10, 1, "-0.01")})

	var ipErr *InvalidPriceError
	require.ErrorAs(t, err, &ipErr)
	assert.Equal(t, int64(10), ipErr.DishID)
}

func TestAssemble_ZeroPriceAllowed(t *testing.T) {
	o, err := Assemble(1, 7, StatusNew, []cart.Line{snapshotLine(10, 2, "0.00")})
	require.NoError(t, err)
	assert.True(t, o.Total.IsZero())
}
