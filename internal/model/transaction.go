package model

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionDirection says whether money came in or went out.
type TransactionDirection string

// Transaction directions.
const (
	DirectionIncome  TransactionDirection = "income"
	DirectionExpense TransactionDirection = "expense"
)

// Transaction is a single imported statement line, used to build a FinancialContext.
type Transaction struct {
	Date         time.Time
	ID           string
	Name         string // Raw transaction description
	MerchantName string // Cleaned merchant name
	AccountID    string
	Hash         string
	Type         string // Transaction type (e.g., DEBIT, CHECK, PAYMENT, ATM)
	Category     string
	Direction    TransactionDirection
	Amount       decimal.Decimal // Always positive; Direction carries the sign
}

// GenerateHash creates a unique hash for duplicate detection.
func (t *Transaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%s:%s:%s",
		t.Date.Format("2006-01-02"),
		t.Amount.StringFixed(2),
		t.MerchantName,
		t.AccountID)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}
