package core

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const dateLayout = "2006-01-02"

type (
	// TransactionType is a closed enumeration: every value crossing the
	// API boundary is validated against the two variants below.
	TransactionType string

	// Date is a calendar date without a time component. It marshals to
	// and from YYYY-MM-DD, which is also its stored representation.
	Date struct {
		time.Time
	}

	Category struct {
		ID   int64  `json:"category_id"`
		Name string `json:"name"`
	}

	Transaction struct {
		ID          int64           `json:"transaction_id"`
		Date        Date            `json:"transaction_date"`
		Description string          `json:"description"`
		Amount      float64         `json:"amount"`
		CategoryID  *int64          `json:"category_id"`
		Type        TransactionType `json:"transaction_type"`
	}

	// TransactionWithCategory is the listing shape: the LEFT JOIN against
	// categories leaves Category nil for uncategorized rows.
	TransactionWithCategory struct {
		Transaction
		Category *string `json:"category"`
	}

	// NewTransaction carries the fields required to persist a transaction.
	// A nil Date means "today" at the storage layer.
	NewTransaction struct {
		Date        *Date
		Description string
		Amount      float64
		CategoryID  int64
		Type        TransactionType
	}

	// TransactionPatch is a field-level patch: nil fields keep their
	// stored values.
	TransactionPatch struct {
		Date        *Date
		Description *string
		Amount      *float64
		CategoryID  *int64
		Type        *TransactionType
	}

	// TransactionFilter holds the optional, AND-combined listing filters.
	// Month and Year apply only when both are set.
	TransactionFilter struct {
		StartDate  *Date
		EndDate    *Date
		Month      *int
		Year       *int
		CategoryID *int64
	}

	MonthlySummary struct {
		Month            int     `json:"month"`
		Year             int     `json:"year"`
		TotalIncome      float64 `json:"total_income"`
		TotalExpenses    float64 `json:"total_expenses"`
		TopCategory      *string `json:"top_category"`
		TopCategorySpent float64 `json:"top_category_spent"`
	}

	CategorySpending struct {
		Category   string  `json:"category"`
		TotalSpent float64 `json:"total_spent"`
	}
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrDuplicateCategory   = errors.New("category already exists")
	ErrInvalidType         = errors.New("transaction_type must be 'income' or 'expense'")
	ErrEmptyDescription    = errors.New("description cannot be empty")
	ErrEmptyCategoryName   = errors.New("category name cannot be empty")
	ErrInvalidCategoryID   = errors.New("category_id must be a positive integer")
	ErrInvalidMonth        = errors.New("month must be between 1 and 12")
	ErrInvalidDate         = errors.New("date must be in YYYY-MM-DD format")
)

func (t TransactionType) Validate() error {
	switch t {
	case Income, Expense:
		return nil
	}
	return ErrInvalidType
}

// NewDate creates a Date from year, month, day in UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// Today returns the current calendar date in UTC.
func Today() Date {
	now := time.Now().UTC()
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return ErrInvalidDate
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ValidateMonth checks the 1-12 calendar range.
func ValidateMonth(month int) error {
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

func (n NewTransaction) Validate() error {
	if strings.TrimSpace(n.Description) == "" {
		return ErrEmptyDescription
	}
	if n.CategoryID <= 0 {
		return ErrInvalidCategoryID
	}
	return n.Type.Validate()
}

func (p TransactionPatch) Validate() error {
	if p.Description != nil && strings.TrimSpace(*p.Description) == "" {
		return ErrEmptyDescription
	}
	if p.CategoryID != nil && *p.CategoryID <= 0 {
		return ErrInvalidCategoryID
	}
	if p.Type != nil {
		return p.Type.Validate()
	}
	return nil
}

// IsEmpty reports whether the patch would change nothing.
func (p TransactionPatch) IsEmpty() bool {
	return p.Date == nil && p.Description == nil && p.Amount == nil &&
		p.CategoryID == nil && p.Type == nil
}
