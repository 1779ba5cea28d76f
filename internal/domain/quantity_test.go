package domain

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustQuantity(t *testing.T, v int) Quantity {
	t.Helper()
	q, err := NewQuantity(v)
	require.NoError(t, err)
	return q
}

func TestNewQuantity(t *testing.T) {
	for _, v := range []int{0, 1, 500, MaxQuantity} {
		q, err := NewQuantity(v)
		require.NoError(t, err)
		assert.Equal(t, v, q.Value())
	}

	for _, v := range []int{-1, MaxQuantity + 1} {
		_, err := NewQuantity(v)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	}
}

func TestNewQuantityFromFloat(t *testing.T) {
	q, err := NewQuantityFromFloat(42)
	require.NoError(t, err)
	assert.Equal(t, 42, q.Value())

	for _, v := range []float64{-1, 10.5, math.NaN(), math.Inf(1), 1_000_001} {
		_, err := NewQuantityFromFloat(v)
		assert.ErrorIs(t, err, ErrInvalidQuantity, "%v", v)
	}
}

func TestQuantity_Arithmetic(t *testing.T) {
	five := mustQuantity(t, 5)
	ten := mustQuantity(t, 10)

	sum, err := five.Add(ten)
	require.NoError(t, err)
	assert.Equal(t, 15, sum.Value())

	_, err = mustQuantity(t, MaxQuantity).Add(mustQuantity(t, 1))
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	diff, err := ten.Subtract(five)
	require.NoError(t, err)
	assert.Equal(t, 5, diff.Value())

	_, err = five.Subtract(ten)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	prod, err := ten.Multiply(2.5)
	require.NoError(t, err)
	assert.Equal(t, 25, prod.Value())

	zero, err := ten.Multiply(0)
	require.NoError(t, err)
	assert.True(t, zero.IsZero())

	_, err = five.Multiply(0.3)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	for _, f := range []float64{-2, math.NaN(), math.Inf(-1)} {
		_, err := five.Multiply(f)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	}

	assert.Equal(t, 5, five.Value())
}

func TestQuantity_Predicates(t *testing.T) {
	zero := mustQuantity(t, 0)
	five := mustQuantity(t, 5)

	assert.True(t, zero.IsZero())
	assert.False(t, zero.IsPositive())
	assert.True(t, five.IsPositive())
	assert.True(t, five.IsGreaterThan(zero))
	assert.True(t, zero.IsLessThan(five))
	assert.True(t, five.Equals(mustQuantity(t, 5)))
	assert.True(t, five.IsSufficientFor(five))
	assert.False(t, zero.IsSufficientFor(five))
	assert.Equal(t, "5", five.String())
}

func TestQuantity_Properties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("values in range are accepted", prop.ForAll(
		func(v int) bool {
			q, err := NewQuantity(v)
			return err == nil && q.Value() == v
		},
		gen.IntRange(0, MaxQuantity),
	))

	properties.Property("subtract never goes negative", prop.ForAll(
		func(a, b int) bool {
			qa, _ := NewQuantity(a)
			qb, _ := NewQuantity(b)
			diff, err := qa.Subtract(qb)
			if b > a {
				return err != nil
			}
			return err == nil && diff.Value() == a-b
		},
		gen.IntRange(0, 1000),
		gen.IntRange(0, 1000),
	))

	properties.TestingRun(t)
}
