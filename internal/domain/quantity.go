package domain

import (
	"fmt"
	"math"
)

const MaxQuantity = 1_000_000

// Quantity is an immutable stock count in [0, MaxQuantity].
type Quantity struct {
	value int
}

func NewQuantity(value int) (Quantity, error) {
	if value < 0 || value > MaxQuantity {
		return Quantity{}, fmt.Errorf("%w: must be between 0 and %d, got %d", ErrInvalidQuantity, MaxQuantity, value)
	}
	return Quantity{value: value}, nil
}

// NewQuantityFromFloat accepts JSON-style numbers and rejects anything that is not a whole number.
func NewQuantityFromFloat(value float64) (Quantity, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return Quantity{}, fmt.Errorf("%w: must be a finite number", ErrInvalidQuantity)
	}
	if value != math.Trunc(value) {
		return Quantity{}, fmt.Errorf("%w: must be an integer, got %v", ErrInvalidQuantity, value)
	}
	if value < 0 || value > MaxQuantity {
		return Quantity{}, fmt.Errorf("%w: must be between 0 and %d, got %v", ErrInvalidQuantity, MaxQuantity, value)
	}
	return Quantity{value: int(value)}, nil
}

func (q Quantity) Value() int { return q.value }

func (q Quantity) Equals(other Quantity) bool        { return q.value == other.value }
func (q Quantity) IsGreaterThan(other Quantity) bool { return q.value > other.value }
func (q Quantity) IsLessThan(other Quantity) bool    { return q.value < other.value }

func (q Quantity) Add(other Quantity) (Quantity, error) {
	return NewQuantity(q.value + other.value)
}

func (q Quantity) Subtract(other Quantity) (Quantity, error) {
	if other.value > q.value {
		return Quantity{}, fmt.Errorf("%w: cannot subtract %d from %d", ErrInvalidQuantity, other.value, q.value)
	}
	return NewQuantity(q.value - other.value)
}

func (q Quantity) Multiply(factor float64) (Quantity, error) {
	if math.IsNaN(factor) || math.IsInf(factor, 0) || factor < 0 {
		return Quantity{}, fmt.Errorf("%w: factor must be a finite non-negative number", ErrInvalidQuantity)
	}
	return NewQuantityFromFloat(float64(q.value) * factor)
}

func (q Quantity) IsSufficientFor(required Quantity) bool { return q.value >= required.value }
func (q Quantity) IsZero() bool                           { return q.value == 0 }
func (q Quantity) IsPositive() bool                       { return q.value > 0 }

func (q Quantity) String() string { return fmt.Sprintf("%d", q.value) }
