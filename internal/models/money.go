package models

import "github.com/shopspring/decimal"

// minorUnitExp is the exponent between minor and major currency units (kobo/cents).
const minorUnitExp = -2

// Major converts an amount in minor units to a decimal in major units.
func Major(minor int64) decimal.Decimal {
	return decimal.New(minor, minorUnitExp)
}

// FormatMajor renders minor units as a fixed two-place string, e.g. 1250 -> "12.50".
func FormatMajor(minor int64) string {
	return Major(minor).StringFixed(2)
}
