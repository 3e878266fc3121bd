package dosing_test

import "github.com/shopspring/decimal"

func decInt(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}
