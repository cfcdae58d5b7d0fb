// Package fixed provides exact fixed-point monetary values: integer amounts
// scaled by a declared number of decimals. Values never round-trip through
// floating point except at explicit formatting and fixture boundaries.
package fixed

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// Currency is an immutable fixed-point monetary amount. The zero value is
// unusable; construct values with NewCurrency, Zero or the parse helpers.
type Currency struct {
	value    *big.Int
	decimals uint8
}

// NewCurrency creates a currency amount from an integer value scaled by
// 10^decimals. The big.Int is copied, the caller keeps ownership.
func NewCurrency(value *big.Int, decimals uint8) Currency {
	return Currency{value: new(big.Int).Set(value), decimals: decimals}
}

// Zero returns a zero amount at the given precision.
func Zero(decimals uint8) Currency {
	return Currency{value: new(big.Int), decimals: decimals}
}

// ParseCurrency parses an integer string (indexer wire format, e.g. "1250000")
// as an amount scaled by 10^decimals.
func ParseCurrency(s string, decimals uint8) (Currency, error) {
	if s == "" {
		return Zero(decimals), nil
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Currency{}, fmt.Errorf("invalid currency amount %q", s)
	}
	return Currency{value: v, decimals: decimals}, nil
}

// ParseDecimal parses a human decimal string like "1.12" exactly. It fails
// if the fractional part does not fit in the requested precision.
func ParseDecimal(s string, decimals uint8) (Currency, error) {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	if len(frac) > int(decimals) {
		return Currency{}, fmt.Errorf("decimal %q exceeds precision %d", s, decimals)
	}
	digits := whole + frac + strings.Repeat("0", int(decimals)-len(frac))
	v, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return Currency{}, fmt.Errorf("invalid decimal %q", s)
	}
	if neg {
		v.Neg(v)
	}
	return Currency{value: v, decimals: decimals}, nil
}

// FromFloat builds an amount from a float. Fixture and test constructor only;
// production values come from ParseCurrency on indexer data.
func FromFloat(f float64, decimals uint8) Currency {
	c, err := ParseDecimal(strconv.FormatFloat(f, 'f', int(decimals), 64), decimals)
	if err != nil {
		panic(err)
	}
	return c
}

// Decimals returns the declared precision.
func (c Currency) Decimals() uint8 { return c.decimals }

// BigInt returns a copy of the scaled integer value.
func (c Currency) BigInt() *big.Int {
	if c.value == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(c.value)
}

func (c Currency) raw() *big.Int {
	if c.value == nil {
		return new(big.Int)
	}
	return c.value
}

// checkScale guards against mixing precisions implicitly. Aligning scales is
// always an explicit SetDecimals call at the site that needs it.
func (c Currency) checkScale(other Currency, op string) {
	if c.decimals != other.decimals {
		panic(fmt.Sprintf("fixed: %s with mismatched decimals %d and %d", op, c.decimals, other.decimals))
	}
}

// Add returns c + other. Panics if precisions differ.
func (c Currency) Add(other Currency) Currency {
	c.checkScale(other, "add")
	return Currency{value: new(big.Int).Add(c.raw(), other.raw()), decimals: c.decimals}
}

// Sub returns c - other. Panics if precisions differ.
func (c Currency) Sub(other Currency) Currency {
	c.checkScale(other, "sub")
	return Currency{value: new(big.Int).Sub(c.raw(), other.raw()), decimals: c.decimals}
}

// Neg returns -c.
func (c Currency) Neg() Currency {
	return Currency{value: new(big.Int).Neg(c.raw()), decimals: c.decimals}
}

// MulPrice returns c scaled by a price, keeping c's precision:
// (value * price) / 10^priceDecimals, truncated toward zero.
func (c Currency) MulPrice(p Price) Currency {
	v := new(big.Int).Mul(c.raw(), p.raw())
	v.Quo(v, pow10(priceDecimals))
	return Currency{value: v, decimals: c.decimals}
}

// SetDecimals converts to another precision. Widening is exact; narrowing
// truncates toward zero and is only legitimate at output boundaries.
func (c Currency) SetDecimals(decimals uint8) Currency {
	if decimals == c.decimals {
		return Currency{value: c.BigInt(), decimals: decimals}
	}
	v := new(big.Int)
	if decimals > c.decimals {
		v.Mul(c.raw(), pow10(decimals-c.decimals))
	} else {
		v.Quo(c.raw(), pow10(c.decimals-decimals))
	}
	return Currency{value: v, decimals: decimals}
}

// IsZero reports whether the amount is zero.
func (c Currency) IsZero() bool { return c.raw().Sign() == 0 }

// Equal reports value and precision equality.
func (c Currency) Equal(other Currency) bool {
	return c.decimals == other.decimals && c.raw().Cmp(other.raw()) == 0
}

// Cmp compares two amounts of the same precision (-1, 0, +1).
func (c Currency) Cmp(other Currency) int {
	c.checkScale(other, "cmp")
	return c.raw().Cmp(other.raw())
}

// String formats the amount as a decimal string, e.g. "12.345678" at 6
// decimals. This is a formatting boundary; no precision is lost.
func (c Currency) String() string {
	return formatScaled(c.raw(), c.decimals)
}

// MarshalJSON renders the amount as a quoted decimal string.
func (c Currency) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(c.String())), nil
}

func formatScaled(v *big.Int, decimals uint8) string {
	s := new(big.Int).Abs(v).String()
	if int(decimals) >= len(s) {
		s = strings.Repeat("0", int(decimals)-len(s)+1) + s
	}
	cut := len(s) - int(decimals)
	out := s[:cut]
	if decimals > 0 {
		out += "." + s[cut:]
	}
	if v.Sign() < 0 {
		out = "-" + out
	}
	return out
}

// Powers of ten are precomputed once; pow10 results are read-only after init.
var pow10Table = func() []*big.Int {
	t := make([]*big.Int, 78)
	t[0] = big.NewInt(1)
	for i := 1; i < len(t); i++ {
		t[i] = new(big.Int).Mul(t[i-1], big.NewInt(10))
	}
	return t
}()

func pow10(n uint8) *big.Int {
	if int(n) < len(pow10Table) {
		return pow10Table[n]
	}
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}
