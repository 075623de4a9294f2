package budget

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Cents is a currency amount stored as integer cents. On the wire it is a
// plain decimal number ("12.34"), matching what the API serves.
type Cents int64

// ParseAmount parses a user-entered decimal string ("12.34") into cents.
func ParseAmount(s string) (Cents, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}

	return Cents(d.Mul(decimal.NewFromInt(100)).Round(0).IntPart()), nil
}

// String formats the amount with two decimal places.
func (c Cents) String() string {
	return decimal.New(int64(c), -2).StringFixed(2)
}

func (c Cents) MarshalJSON() ([]byte, error) {
	return []byte(decimal.New(int64(c), -2).String()), nil
}

func (c *Cents) UnmarshalJSON(data []byte) error {
	d, err := decimal.NewFromString(string(data))
	if err != nil {
		return fmt.Errorf("invalid amount %s: %w", data, err)
	}

	*c = Cents(d.Mul(decimal.NewFromInt(100)).Round(0).IntPart())

	return nil
}
