package fixed

import (
	"math/big"
	"testing"
)

func TestParseCurrency(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		decimals uint8
		want     string
		wantErr  bool
	}{
		{name: "six decimals", input: "1250000", decimals: 6, want: "1.250000"},
		{name: "zero", input: "0", decimals: 6, want: "0.000000"},
		{name: "empty is zero", input: "", decimals: 6, want: "0.000000"},
		{name: "negative", input: "-42", decimals: 2, want: "-0.42"},
		{name: "no decimals", input: "1500", decimals: 0, want: "1500"},
		{name: "smaller than one unit", input: "7", decimals: 6, want: "0.000007"},
		{name: "garbage", input: "12x", decimals: 6, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := ParseCurrency(tt.input, tt.decimals)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseCurrency(%q) expected error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseCurrency(%q) error = %v", tt.input, err)
			}
			if got := c.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseDecimal(t *testing.T) {
	c, err := ParseDecimal("1.12", 6)
	if err != nil {
		t.Fatalf("ParseDecimal error = %v", err)
	}
	if got := c.BigInt().Int64(); got != 1120000 {
		t.Errorf("BigInt() = %d, want 1120000", got)
	}

	if _, err := ParseDecimal("0.1234567", 6); err == nil {
		t.Error("expected error for fraction exceeding precision")
	}
}

func TestCurrencyArithmetic(t *testing.T) {
	a := FromFloat(10.5, 6)
	b := FromFloat(2.25, 6)

	if got := a.Add(b).String(); got != "12.750000" {
		t.Errorf("Add = %q, want 12.750000", got)
	}
	if got := a.Sub(b).String(); got != "8.250000" {
		t.Errorf("Sub = %q, want 8.250000", got)
	}
	if got := b.Neg().String(); got != "-2.250000" {
		t.Errorf("Neg = %q, want -2.250000", got)
	}
}

func TestCurrencyMismatchedDecimalsPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on mismatched decimals")
		}
	}()
	FromFloat(1, 6).Add(FromFloat(1, 18))
}

func TestCurrencySetDecimals(t *testing.T) {
	c := FromFloat(1.25, 6)

	widened := c.SetDecimals(18)
	if got := widened.String(); got != "1.250000000000000000" {
		t.Errorf("widen = %q", got)
	}
	// Widening then narrowing is lossless.
	if !widened.SetDecimals(6).Equal(c) {
		t.Error("widen/narrow round trip lost precision")
	}
}

func TestCurrencyMulPrice(t *testing.T) {
	// 1000 tokens at 1.12 in a 6-decimal currency.
	supply := FromFloat(1000, 6)
	price := PriceFromFloat(1.12)

	if got := supply.MulPrice(price).String(); got != "1120.000000" {
		t.Errorf("MulPrice = %q, want 1120.000000", got)
	}
}

func TestCurrencyJSON(t *testing.T) {
	c := NewCurrency(big.NewInt(1120000), 6)
	data, err := c.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON error = %v", err)
	}
	if string(data) != `"1.120000"` {
		t.Errorf("MarshalJSON = %s", data)
	}
}

func TestPriceString(t *testing.T) {
	p := PriceFromFloat(1.12)
	if got := p.String(); got != "1.120000000000000000" {
		t.Errorf("String() = %q", got)
	}
	if p.IsZero() {
		t.Error("IsZero() = true for non-zero price")
	}
}
