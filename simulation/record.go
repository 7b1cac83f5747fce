/*
record.go - Append-only per-period record series

PURPOSE:
  One Record is appended per completed period and never mutated
  afterwards. The series is the contract with external charting
  clients: column accessors return sequences aligned by index.

COLUMN TIMING:
  InitialCapital and CurrentCapital are start-of-period values;
  BankLoan, DebtPayment and NetProfit are end-of-period values. A
  period's record therefore reads "entering with this capital, the
  period ended with this debt".
*/
package simulation

import (
	"github.com/shopspring/decimal"
)

// Record is one completed simulation period.
type Record struct {
	T              int
	InitialCapital decimal.Decimal
	CurrentCapital decimal.Decimal
	BankLoan       decimal.Decimal
	DebtPayment    decimal.Decimal
	NetProfit      decimal.Decimal
}

// Series is the ordered, append-only collection of per-period records.
// The zero value is ready to use.
type Series struct {
	records []Record
}

func (s *Series) Append(r Record) {
	s.records = append(s.records, r)
}

func (s *Series) Len() int { return len(s.records) }

// Records returns the recorded periods in order. Callers must not
// modify the returned slice.
func (s *Series) Records() []Record { return s.records }

// =============================================================================
// ALIGNED COLUMNS - For external charting clients
// =============================================================================

func (s *Series) Times() []int {
	out := make([]int, len(s.records))
	for i, r := range s.records {
		out[i] = r.T
	}
	return out
}

func (s *Series) InitialCapitals() []decimal.Decimal {
	return s.column(func(r Record) decimal.Decimal { return r.InitialCapital })
}

func (s *Series) CurrentCapitals() []decimal.Decimal {
	return s.column(func(r Record) decimal.Decimal { return r.CurrentCapital })
}

func (s *Series) BankLoans() []decimal.Decimal {
	return s.column(func(r Record) decimal.Decimal { return r.BankLoan })
}

func (s *Series) DebtPayments() []decimal.Decimal {
	return s.column(func(r Record) decimal.Decimal { return r.DebtPayment })
}

func (s *Series) NetProfits() []decimal.Decimal {
	return s.column(func(r Record) decimal.Decimal { return r.NetProfit })
}

func (s *Series) column(f func(Record) decimal.Decimal) []decimal.Decimal {
	out := make([]decimal.Decimal, len(s.records))
	for i, r := range s.records {
		out[i] = f(r)
	}
	return out
}
