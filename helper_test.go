package tinvest

import (
	"fmt"
	"time"

	"github.com/Semihal/tcs-invest-analysis/date"
)

// RUB is a helper for tests to create reporting-currency money from a const.
func RUB(v float64) Money { return M(v, "RUB") }

// USD is a helper for tests to create dollar money from a const.
func USD(v float64) Money { return M(v, "USD") }

var opSeq int

// tradeOn builds a trade operation at noon of the given day.
func tradeOn(kind OperationKind, isin, day string, quantity int64, unitPrice, total float64, currency string) Operation {
	opSeq++
	on := date.MustParse(day)
	return Operation{
		ID:          fmt.Sprintf("op-%d", opSeq),
		Time:        time.Date(on.Year(), on.Month(), on.Day(), 12, 0, 0, 0, time.UTC),
		ISIN:        isin,
		Kind:        kind,
		Quantity:    Q(quantity),
		UnitPrice:   M(unitPrice, currency),
		TotalAmount: M(total, currency),
		Commission:  M(0, currency),
		Currency:    currency,
	}
}

func buyOn(isin, day string, quantity int64, unitPrice float64) Operation {
	return tradeOn(Buy, isin, day, quantity, unitPrice, unitPrice*float64(quantity), "RUB")
}

func sellOn(isin, day string, quantity int64, unitPrice float64) Operation {
	return tradeOn(Sell, isin, day, quantity, unitPrice, unitPrice*float64(quantity), "RUB")
}
