package fixed

import (
	"math/big"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestCurrencyProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	amount := func(v int64) Currency { return NewCurrency(big.NewInt(v), 6) }

	properties.Property("addition is commutative", prop.ForAll(
		func(a, b int64) bool {
			return amount(a).Add(amount(b)).Equal(amount(b).Add(amount(a)))
		},
		gen.Int64(),
		gen.Int64(),
	))

	properties.Property("subtraction inverts addition", prop.ForAll(
		func(a, b int64) bool {
			return amount(a).Add(amount(b)).Sub(amount(b)).Equal(amount(a))
		},
		gen.Int64(),
		gen.Int64(),
	))

	properties.Property("widening scale is lossless", prop.ForAll(
		func(a int64, extra uint8) bool {
			wider := 6 + extra%12
			c := amount(a)
			return c.SetDecimals(wider).SetDecimals(6).Equal(c)
		},
		gen.Int64(),
		gen.UInt8(),
	))

	properties.Property("string parse round trip", prop.ForAll(
		func(a int64) bool {
			c := amount(a)
			parsed, err := ParseDecimal(c.String(), 6)
			return err == nil && parsed.Equal(c)
		},
		gen.Int64(),
	))

	properties.TestingRun(t)
}
