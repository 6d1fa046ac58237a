package core

import (
	"strings"
	"time"
)

const (
	Income  TransactionType = "INCOME"
	Expense TransactionType = "EXPENSE"
)

// DateLayout is the calendar date encoding used everywhere: ISO 8601, date only.
const DateLayout = "2006-01-02"

type (
	TransactionType string

	// Comment is a note left on a transaction. Comments are append-only and
	// live exactly as long as their parent transaction.
	Comment struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		Text      string    `json:"text"`
		Timestamp time.Time `json:"timestamp"`
	}

	// Transaction is a single income or expense record in the community book.
	// Amount is in whole rupiah (no fractional subunits). Category is a label
	// by value; a later category deletion does not touch existing records.
	Transaction struct {
		ID          string          `json:"id"`
		Type        TransactionType `json:"type"`
		Amount      int64           `json:"amount"`
		Category    string          `json:"category"`
		Description string          `json:"description"`
		Treasurer   string          `json:"treasurer"`
		Date        string          `json:"date"`
		ImageURL    string          `json:"imageUrl,omitempty"`
		Comments    []Comment       `json:"comments"`
	}
)

func (t TransactionType) IsValid() bool {
	return t == Income || t == Expense
}

// Validate applies the transaction rule set and reports the first failing
// field as a *ValidationError. ImageURL is accepted as-is: the size and
// content-type limits are enforced by the collaborator that produces it.
func (t Transaction) Validate() error {
	if !t.Type.IsValid() {
		return &ValidationError{Field: "type", Reason: "must be INCOME or EXPENSE"}
	}
	if t.Amount < 0 {
		return &ValidationError{Field: "amount", Reason: "must not be negative"}
	}
	if strings.TrimSpace(t.Category) == "" {
		return &ValidationError{Field: "category", Reason: "must not be empty"}
	}
	if strings.TrimSpace(t.Description) == "" {
		return &ValidationError{Field: "description", Reason: "must not be empty"}
	}
	if strings.TrimSpace(t.Treasurer) == "" {
		return &ValidationError{Field: "treasurer", Reason: "must not be empty"}
	}
	if _, err := time.Parse(DateLayout, t.Date); err != nil {
		return &ValidationError{Field: "date", Reason: "must be a valid yyyy-mm-dd date"}
	}
	return nil
}

// Clone returns a deep copy. Comments get their own backing array so callers
// can never reach into store-owned state.
func (t Transaction) Clone() Transaction {
	out := t
	if t.Comments != nil {
		out.Comments = make([]Comment, len(t.Comments))
		copy(out.Comments, t.Comments)
	}
	return out
}
