package domain

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Transaction represents one normalized transaction produced by the Normalizer.
// Date and Amount are always valid for a retained record; Type is always one of
// the known labels. Category and Merchant are filled in by the classification step.
type Transaction struct {
	TransactionID *string // from "transaction_id" or nil

	Date        civil.Date      // parsed from "date"
	Amount      decimal.Decimal // from "amount" (credit = positive, debit = negative)
	CustomerID  *int64          // from "customer_id" or nil when missing/unparseable
	Type        TxType          // observed, filled with the batch mode, or inferred from the sign
	Description string          // from "description", "Unknown" when missing

	Merchant string // from "merchant" or inferred from the description
	Category string // assigned by the Classifier
}

// TxType is the transaction direction label.
type TxType string

const (
	TypeCredit   TxType = "credit"
	TypeDebit    TxType = "debit"
	TypeTransfer TxType = "transfer"
)

// TxTypes lists the known labels in their natural order.
var TxTypes = []TxType{TypeCredit, TypeDebit, TypeTransfer}

// ParseTxType normalizes s and reports whether it is a known label.
func ParseTxType(s string) (TxType, bool) {
	switch t := TxType(normalizeLabel(s)); t {
	case TypeCredit, TypeDebit, TypeTransfer:
		return t, true
	default:
		return "", false
	}
}

// InferTxType derives the type from the sign of amount. Transfers are never inferred.
func InferTxType(amount decimal.Decimal) TxType {
	if amount.IsPositive() {
		return TypeCredit
	}
	return TypeDebit
}

// IsOutflow reports whether the type counts towards expenses in period and customer summaries.
func (t TxType) IsOutflow() bool {
	return t == TypeDebit || t == TypeTransfer
}
