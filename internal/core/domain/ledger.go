package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// FundLedgerKey is the storage key of the single shared fund balance row.
const FundLedgerKey = "total_funds"

// FundLedger holds the scalar remaining-funds balance shared across all
// requests. The balance has no floor: approvals beyond available funds
// drive it negative rather than fail.
type FundLedger struct {
	Key       string          `json:"key"`
	Balance   decimal.Decimal `json:"balance"`
	UpdatedAt time.Time       `json:"updated_at"`
}
