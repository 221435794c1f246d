// Package utils provides small helpers shared across qualitycore packages.
package utils

import "math"

// Float returns a pointer to v. Non-finite values become nil so that NaN and
// ±Inf never reach downstream sums or medians.
func Float(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// Coalesce returns the first non-nil candidate, in the order given.
func Coalesce(candidates ...*float64) *float64 {
	for _, c := range candidates {
		if c != nil {
			return c
		}
	}
	return nil
}

// OrZero dereferences v, treating nil as 0.
func OrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// ZeroIfNil returns v, or a pointer to 0 when v is nil.
func ZeroIfNil(v *float64) *float64 {
	if v == nil {
		return Float(0)
	}
	return v
}

// Add returns a+b, nil if either operand is nil.
func Add(a, b *float64) *float64 {
	if a == nil || b == nil {
		return nil
	}
	return Float(*a + *b)
}

// Sub returns a-b, nil if either operand is nil.
func Sub(a, b *float64) *float64 {
	if a == nil || b == nil {
		return nil
	}
	return Float(*a - *b)
}

// Mul returns a*b, nil if either operand is nil.
func Mul(a, b *float64) *float64 {
	if a == nil || b == nil {
		return nil
	}
	return Float(*a * *b)
}

// Div returns a/b. Nil operands, a zero divisor and non-finite results all yield nil.
func Div(a, b *float64) *float64 {
	if a == nil || b == nil || *b == 0 {
		return nil
	}
	return Float(*a / *b)
}

// Abs returns |v|, nil if v is nil.
func Abs(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return Float(math.Abs(*v))
}

// Scale returns v*factor, nil if v is nil.
func Scale(v *float64, factor float64) *float64 {
	if v == nil {
		return nil
	}
	return Float(*v * factor)
}
