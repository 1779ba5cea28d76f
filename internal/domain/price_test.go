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

func mustPrice(t *testing.T, amount float64, currency string) Price {
	t.Helper()
	p, err := NewPrice(amount, currency)
	require.NoError(t, err)
	return p
}

func TestNewPrice(t *testing.T) {
	tests := []struct {
		name       string
		amount     float64
		currency   string
		wantErr    error
		wantString string
	}{
		{name: "valid usd", amount: 100, currency: "USD", wantString: "USD 100.00"},
		{name: "lowercase currency", amount: 12.5, currency: "eur", wantString: "EUR 12.50"},
		{name: "padded currency", amount: 1, currency: " inr ", wantErr: ErrUnsupportedCurrency},
		{name: "rounds up", amount: 99.999, currency: "USD", wantString: "USD 100.00"},
		{name: "rounds half away from zero", amount: 10.005, currency: "RUB", wantString: "RUB 10.01"},
		{name: "rounds down", amount: 10.004, currency: "USD", wantString: "USD 10.00"},
		{name: "maximum", amount: 999999.99, currency: "USD", wantString: "USD 999999.99"},
		{name: "minimum", amount: 0.01, currency: "USD", wantString: "USD 0.01"},
		{name: "zero", amount: 0, currency: "USD", wantErr: ErrInvalidAmount},
		{name: "negative", amount: -5, currency: "USD", wantErr: ErrInvalidAmount},
		{name: "above maximum", amount: 1000000, currency: "USD", wantErr: ErrInvalidAmount},
		{name: "just above maximum", amount: 999999.991, currency: "USD", wantErr: ErrInvalidAmount},
		{name: "rounds to zero", amount: 0.004, currency: "USD", wantErr: ErrInvalidAmount},
		{name: "nan", amount: math.NaN(), currency: "USD", wantErr: ErrInvalidAmount},
		{name: "infinity", amount: math.Inf(1), currency: "USD", wantErr: ErrInvalidAmount},
		{name: "unsupported currency", amount: 10, currency: "GBP", wantErr: ErrUnsupportedCurrency},
		{name: "empty currency", amount: 10, currency: "", wantErr: ErrUnsupportedCurrency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPrice(tt.amount, tt.currency)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantString, p.String())
		})
	}
}

func TestPrice_Compare(t *testing.T) {
	a := mustPrice(t, 100, "USD")
	b := mustPrice(t, 50, "USD")

	gt, err := a.IsGreaterThan(b)
	require.NoError(t, err)
	assert.True(t, gt)

	lt, err := a.IsLessThan(b)
	require.NoError(t, err)
	assert.False(t, lt)

	assert.True(t, a.Equals(mustPrice(t, 100.001, "usd")))
	assert.False(t, a.Equals(mustPrice(t, 100, "EUR")))

	_, err = a.IsGreaterThan(mustPrice(t, 1, "EUR"))
	assert.ErrorIs(t, err, ErrCurrencyMismatch)
	_, err = a.IsLessThan(mustPrice(t, 1, "EUR"))
	assert.ErrorIs(t, err, ErrCurrencyMismatch)
}

func TestPrice_Arithmetic(t *testing.T) {
	hundred := mustPrice(t, 100, "USD")
	fifty := mustPrice(t, 50, "USD")

	t.Run("add", func(t *testing.T) {
		sum, err := hundred.Add(fifty)
		require.NoError(t, err)
		assert.True(t, sum.Equals(mustPrice(t, 150, "USD")))
	})

	t.Run("add different currencies", func(t *testing.T) {
		_, err := hundred.Add(mustPrice(t, 50, "EUR"))
		assert.ErrorIs(t, err, ErrCurrencyMismatch)
	})

	t.Run("add past maximum", func(t *testing.T) {
		_, err := mustPrice(t, 999999.99, "USD").Add(mustPrice(t, 0.01, "USD"))
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("subtract", func(t *testing.T) {
		diff, err := hundred.Subtract(fifty)
		require.NoError(t, err)
		assert.Equal(t, "USD 50.00", diff.String())
	})

	t.Run("subtract to zero", func(t *testing.T) {
		_, err := hundred.Subtract(hundred)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("subtract different currencies", func(t *testing.T) {
		_, err := hundred.Subtract(mustPrice(t, 1, "INR"))
		assert.ErrorIs(t, err, ErrCurrencyMismatch)
	})

	t.Run("multiply", func(t *testing.T) {
		p, err := mustPrice(t, 10.10, "EUR").Multiply(1.5)
		require.NoError(t, err)
		assert.Equal(t, "EUR 15.15", p.String())
	})

	t.Run("multiply invalid factor", func(t *testing.T) {
		for _, f := range []float64{-1, math.NaN(), math.Inf(1)} {
			_, err := hundred.Multiply(f)
			assert.ErrorIs(t, err, ErrInvalidAmount)
		}
	})

	t.Run("multiply by zero", func(t *testing.T) {
		_, err := hundred.Multiply(0)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("operands untouched", func(t *testing.T) {
		assert.Equal(t, "USD 100.00", hundred.String())
		assert.Equal(t, "USD 50.00", fifty.String())
	})
}

func TestParsePrice(t *testing.T) {
	p, err := ParsePrice("usd 19.99")
	require.NoError(t, err)
	assert.Equal(t, "USD", p.Currency())
	assert.Equal(t, 19.99, p.AmountFloat())

	p, err = ParsePrice("  EUR\t5 ")
	require.NoError(t, err)
	assert.Equal(t, "EUR 5.00", p.String())

	for _, in := range []string{"", "USD", "USD 1 2", "USD abc"} {
		_, err := ParsePrice(in)
		assert.ErrorIs(t, err, ErrInvalidPriceFormat, in)
	}

	_, err = ParsePrice("GBP 10.00")
	assert.ErrorIs(t, err, ErrUnsupportedCurrency)

	_, err = ParsePrice("USD -1")
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestSupportedCurrencies(t *testing.T) {
	got := SupportedCurrencies()
	assert.Equal(t, []string{"USD", "EUR", "INR", "RUB"}, got)

	got[0] = "XXX"
	assert.Equal(t, "USD", SupportedCurrencies()[0])

	assert.True(t, IsSupportedCurrency("rub"))
	assert.False(t, IsSupportedCurrency("JPY"))
	assert.False(t, IsSupportedCurrency(" usd"))
}

func TestPrice_Properties(t *testing.T) {
	properties := gopter.NewProperties(nil)
	currencies := gen.OneConstOf("USD", "usd", "EUR", "eur", "INR", "RUB", "Rub")

	properties.Property("parse inverts string", prop.ForAll(
		func(amount float64, currency string) bool {
			p, err := NewPrice(amount, currency)
			if err != nil {
				return false
			}
			parsed, err := ParsePrice(p.String())
			if err != nil {
				return false
			}
			return parsed.Equals(p)
		},
		gen.Float64Range(0.01, 999999.99),
		currencies,
	))

	properties.Property("amounts are kept to cents", prop.ForAll(
		func(amount float64) bool {
			p, err := NewPrice(amount, "USD")
			if err != nil {
				return false
			}
			return p.Amount().Equal(p.Amount().Round(2))
		},
		gen.Float64Range(0.01, 999999.99),
	))

	properties.Property("non-positive amounts are rejected", prop.ForAll(
		func(amount float64) bool {
			_, err := NewPrice(amount, "USD")
			return err != nil
		},
		gen.Float64Range(-1e9, 0),
	))

	properties.Property("amounts above the maximum are rejected", prop.ForAll(
		func(amount float64) bool {
			_, err := NewPrice(amount, "USD")
			return err != nil
		},
		gen.Float64Range(1_000_000, 1e12),
	))

	properties.TestingRun(t)
}
