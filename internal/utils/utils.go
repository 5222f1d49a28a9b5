package utils

import (
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// MinorUnitPlaces is the number of decimal places of the wallet currency
const MinorUnitPlaces = 2

var hundred = decimal.NewFromInt(100)

// Percentage returns amount × pct / 100
func Percentage(amount, pct decimal.Decimal) decimal.Decimal {
	return amount.Mul(pct).Div(hundred)
}

// RoundDownToMinorUnit truncates a payout so rounding can never create money
func RoundDownToMinorUnit(amount decimal.Decimal) decimal.Decimal {
	return amount.Truncate(MinorUnitPlaces)
}

// NewValidator returns a validator that understands decimal.Decimal fields
func NewValidator() *validator.Validate {
	v := validator.New()
	RegisterDecimalType(v)
	return v
}

// RegisterDecimalType lets numeric tags such as gte=0 and lte=100 apply to decimal.Decimal
func RegisterDecimalType(v *validator.Validate) {
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}
