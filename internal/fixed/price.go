package fixed

import (
	"fmt"
	"math/big"
	"strconv"
)

// priceDecimals is the fixed precision of token prices on the wire.
const priceDecimals = 18

// Price is an immutable fixed-point token price with 18 decimals.
type Price struct {
	value *big.Int
}

// NewPrice creates a price from an integer value scaled by 10^18.
func NewPrice(value *big.Int) Price {
	return Price{value: new(big.Int).Set(value)}
}

// ParsePrice parses an integer string (indexer wire format) as an 18-decimal
// price.
func ParsePrice(s string) (Price, error) {
	if s == "" {
		return Price{value: new(big.Int)}, nil
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Price{}, fmt.Errorf("invalid price %q", s)
	}
	return Price{value: v}, nil
}

// PriceFromFloat builds a price from a float. Fixture constructor only. The
// shortest decimal representation is used so clean inputs like 1.05 stay
// exact instead of materializing binary noise at 18 digits.
func PriceFromFloat(f float64) Price {
	c, err := ParseDecimal(strconv.FormatFloat(f, 'f', -1, 64), priceDecimals)
	if err != nil {
		panic(err)
	}
	return Price{value: c.BigInt()}
}

// BigInt returns a copy of the scaled integer value.
func (p Price) BigInt() *big.Int {
	if p.value == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(p.value)
}

func (p Price) raw() *big.Int {
	if p.value == nil {
		return new(big.Int)
	}
	return p.value
}

// IsZero reports whether the price is zero.
func (p Price) IsZero() bool { return p.raw().Sign() == 0 }

// Equal reports value equality.
func (p Price) Equal(other Price) bool { return p.raw().Cmp(other.raw()) == 0 }

// String formats the price as a decimal string.
func (p Price) String() string { return formatScaled(p.raw(), priceDecimals) }

// MarshalJSON renders the price as a quoted decimal string.
func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(p.String())), nil
}
