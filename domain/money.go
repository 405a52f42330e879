package domain

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/cockroachdb/apd/v3"
)

// moneyContext carries enough precision for any order total we accept.
var moneyContext = apd.BaseContext.WithPrecision(34)

// Money is an exact decimal amount. It is persisted and serialised as decimal
// text, never as a binary float.
type Money struct {
	d apd.Decimal
}

// ParseMoney parses a finite decimal such as "318.00".
func ParseMoney(s string) (Money, error) {
	var m Money
	s = strings.TrimSpace(s)
	if s == "" {
		return m, fmt.Errorf("empty amount")
	}
	if _, _, err := m.d.SetString(s); err != nil {
		return Money{}, fmt.Errorf("parse amount %q: %w", s, err)
	}
	if m.d.Form != apd.Finite {
		return Money{}, fmt.Errorf("amount %q is not a finite number", s)
	}
	return m, nil
}

// MustMoney is ParseMoney for static tables; it panics on malformed input.
func MustMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

// MulInt returns m × n exactly.
func (m Money) MulInt(n int64) (Money, error) {
	var factor, out apd.Decimal
	factor.SetInt64(n)
	if _, err := moneyContext.Mul(&out, &m.d, &factor); err != nil {
		return Money{}, err
	}
	return Money{d: out}, nil
}

// Equal compares numerically, so 318 equals 318.00.
func (m Money) Equal(other Money) bool {
	return m.d.Cmp(&other.d) == 0
}

// Sign returns -1, 0 or +1.
func (m Money) Sign() int {
	return m.d.Sign()
}

func (m Money) String() string {
	return m.d.Text('f')
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts both JSON numbers and quoted decimal strings.
func (m *Money) UnmarshalJSON(data []byte) error {
	raw := string(bytes.Trim(bytes.TrimSpace(data), `"`))
	parsed, err := ParseMoney(raw)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

func (m Money) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Money) UnmarshalText(text []byte) error {
	parsed, err := ParseMoney(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
