package domain

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	CurrencyUSD = "USD"
	CurrencyEUR = "EUR"
	CurrencyINR = "INR"
	CurrencyRUB = "RUB"

	DefaultCurrency = CurrencyUSD

	priceScale = 2
)

var (
	supportedCurrencies = []string{CurrencyUSD, CurrencyEUR, CurrencyINR, CurrencyRUB}
	maxPriceAmount      = decimal.RequireFromString("999999.99")
)

// Price is an immutable monetary amount in a supported currency.
// The zero value is not a valid Price; use NewPrice.
type Price struct {
	amount   decimal.Decimal
	currency string
}

// NewPrice validates amount and currency and rounds amount to cents, half away from zero.
func NewPrice(amount float64, currency string) (Price, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return Price{}, fmt.Errorf("%w: amount must be a finite number", ErrInvalidAmount)
	}
	return NewPriceFromDecimal(decimal.NewFromFloat(amount), currency)
}

// NewPriceFromDecimal is NewPrice for amounts already held as decimals.
func NewPriceFromDecimal(amount decimal.Decimal, currency string) (Price, error) {
	if !amount.IsPositive() {
		return Price{}, fmt.Errorf("%w: amount must be greater than 0, got %s", ErrInvalidAmount, amount)
	}
	if amount.GreaterThan(maxPriceAmount) {
		return Price{}, fmt.Errorf("%w: amount must not exceed %s, got %s", ErrInvalidAmount, maxPriceAmount, amount)
	}

	code, err := normalizeCurrency(currency)
	if err != nil {
		return Price{}, err
	}

	rounded := amount.Round(priceScale)
	if !rounded.IsPositive() {
		return Price{}, fmt.Errorf("%w: amount %s rounds to zero", ErrInvalidAmount, amount)
	}

	return Price{amount: rounded, currency: code}, nil
}

// ParsePrice is the inverse of Price.String: "<CURRENCY> <amount>".
func ParsePrice(s string) (Price, error) {
	parts := strings.Fields(s)
	if len(parts) != 2 {
		return Price{}, fmt.Errorf("%w: %q", ErrInvalidPriceFormat, s)
	}

	amount, err := decimal.NewFromString(parts[1])
	if err != nil {
		return Price{}, fmt.Errorf("%w: invalid amount %q", ErrInvalidPriceFormat, parts[1])
	}

	return NewPriceFromDecimal(amount, parts[0])
}

// SupportedCurrencies returns the accepted ISO codes.
func SupportedCurrencies() []string {
	out := make([]string, len(supportedCurrencies))
	copy(out, supportedCurrencies)
	return out
}

// IsSupportedCurrency reports whether code names a supported currency, ignoring case.
func IsSupportedCurrency(code string) bool {
	_, err := normalizeCurrency(code)
	return err == nil
}

func normalizeCurrency(code string) (string, error) {
	upper := strings.ToUpper(code)
	for _, c := range supportedCurrencies {
		if c == upper {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q, supported: %s", ErrUnsupportedCurrency, code, strings.Join(supportedCurrencies, ", "))
}

func (p Price) Amount() decimal.Decimal { return p.amount }

// AmountFloat returns the amount as a float64 for transport and storage.
func (p Price) AmountFloat() float64 { return p.amount.InexactFloat64() }

func (p Price) Currency() string { return p.currency }

func (p Price) Equals(other Price) bool {
	return p.currency == other.currency && p.amount.Equal(other.amount)
}

func (p Price) IsGreaterThan(other Price) (bool, error) {
	if err := p.sameCurrency(other); err != nil {
		return false, err
	}
	return p.amount.GreaterThan(other.amount), nil
}

func (p Price) IsLessThan(other Price) (bool, error) {
	if err := p.sameCurrency(other); err != nil {
		return false, err
	}
	return p.amount.LessThan(other.amount), nil
}

func (p Price) Add(other Price) (Price, error) {
	if err := p.sameCurrency(other); err != nil {
		return Price{}, err
	}
	return NewPriceFromDecimal(p.amount.Add(other.amount), p.currency)
}

// Subtract fails with ErrInvalidAmount when the difference is not positive.
func (p Price) Subtract(other Price) (Price, error) {
	if err := p.sameCurrency(other); err != nil {
		return Price{}, err
	}
	return NewPriceFromDecimal(p.amount.Sub(other.amount), p.currency)
}

func (p Price) Multiply(factor float64) (Price, error) {
	if math.IsNaN(factor) || math.IsInf(factor, 0) || factor < 0 {
		return Price{}, fmt.Errorf("%w: factor must be a finite non-negative number", ErrInvalidAmount)
	}
	return NewPriceFromDecimal(p.amount.Mul(decimal.NewFromFloat(factor)), p.currency)
}

// String renders the canonical form, e.g. "USD 100.00".
func (p Price) String() string {
	return p.currency + " " + p.amount.StringFixed(priceScale)
}

func (p Price) sameCurrency(other Price) error {
	if p.currency != other.currency {
		return fmt.Errorf("%w: %s and %s", ErrCurrencyMismatch, p.currency, other.currency)
	}
	return nil
}
