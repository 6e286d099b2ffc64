package entities

import (
	"bytes"
	"strings"

	"github.com/shopspring/decimal"

	"order-desk/pkg/constants"
)

// Amount - денежная сумма с сервера. Сервер отдаёт её строкой ("1500.00") или числом;
// null, пустая строка и нечисловое значение считаются отсутствующей суммой.
type Amount struct {
	Value decimal.Decimal
	Valid bool
}

func AmountFrom(d decimal.Decimal) Amount {
	return Amount{Value: d, Valid: true}
}

// ParseAmount разбирает строку; нечисловое значение даёт пустую сумму.
func ParseAmount(s string) Amount {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Amount{}
	}
	return AmountFrom(d)
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*a = Amount{}
		return nil
	}
	*a = ParseAmount(strings.Trim(string(b), `"`))
	return nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	if !a.Valid {
		return []byte("null"), nil
	}
	return []byte(`"` + a.Value.StringFixed(2) + `"`), nil
}

// OrZero - значение для суммирования: отсутствующая сумма равна нулю.
func (a Amount) OrZero() decimal.Decimal {
	if !a.Valid {
		return decimal.Zero
	}
	return a.Value
}

func (a Amount) String() string {
	if !a.Valid {
		return constants.SentinelUnknown
	}
	return a.Value.StringFixed(2)
}
