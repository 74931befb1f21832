package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"fintrack/internal/core"

	_ "modernc.org/sqlite"
)

// Repository owns the database/sql pool; every operation borrows a pooled
// connection and is released on all exit paths.
type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the store is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

const transactionColumns = "transaction_id, transaction_date, description, amount, category_id, transaction_type"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t        core.Transaction
		dateStr  string
		category sql.NullInt64
		ttype    string
	)
	if err := row.Scan(&t.ID, &dateStr, &t.Description, &t.Amount, &category, &ttype); err != nil {
		return core.Transaction{}, err
	}
	date, err := core.ParseDate(dateStr)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("stored date %q: %w", dateStr, err)
	}
	t.Date = date
	if category.Valid {
		t.CategoryID = &category.Int64
	}
	t.Type = core.TransactionType(ttype)
	return t, nil
}

// monthKey builds the strftime('%Y-%m', ...) comparison value.
func monthKey(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

// ListTransactions implements store.TransactionStore
func (r *Repository) ListTransactions(ctx context.Context, f core.TransactionFilter) ([]core.TransactionWithCategory, error) {
	query := `
		SELECT t.transaction_id, t.transaction_date, t.description, t.amount,
		       t.category_id, t.transaction_type, c.name AS category
		FROM transactions t
		LEFT JOIN categories c ON t.category_id = c.category_id`

	var conds []string
	var args []any
	if f.StartDate != nil {
		conds = append(conds, "t.transaction_date >= ?")
		args = append(args, f.StartDate.String())
	}
	if f.EndDate != nil {
		conds = append(conds, "t.transaction_date <= ?")
		args = append(args, f.EndDate.String())
	}
	// Month and year narrow the listing only when supplied together.
	if f.Month != nil && f.Year != nil {
		conds = append(conds, "strftime('%Y-%m', t.transaction_date) = ?")
		args = append(args, monthKey(*f.Year, *f.Month))
	}
	if f.CategoryID != nil {
		conds = append(conds, "t.category_id = ?")
		args = append(args, *f.CategoryID)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY t.transaction_date DESC, t.transaction_id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	transactions := []core.TransactionWithCategory{}
	for rows.Next() {
		var (
			t        core.TransactionWithCategory
			dateStr  string
			category sql.NullInt64
			ttype    string
			name     sql.NullString
		)
		if err := rows.Scan(&t.ID, &dateStr, &t.Description, &t.Amount, &category, &ttype, &name); err != nil {
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}
		date, err := core.ParseDate(dateStr)
		if err != nil {
			return nil, fmt.Errorf("stored date %q: %w", dateStr, err)
		}
		t.Date = date
		if category.Valid {
			t.CategoryID = &category.Int64
		}
		t.Type = core.TransactionType(ttype)
		if name.Valid {
			t.Category = &name.String
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return transactions, nil
}

// CreateTransaction implements store.TransactionStore. A nil date falls
// back to today's date at the store.
func (r *Repository) CreateTransaction(ctx context.Context, n core.NewTransaction) (core.Transaction, error) {
	query := `
		INSERT INTO transactions (transaction_date, description, amount, category_id, transaction_type)
		VALUES (COALESCE(?, date('now')), ?, ?, ?, ?)
		RETURNING ` + transactionColumns

	var date any
	if n.Date != nil {
		date = n.Date.String()
	}

	row := r.db.QueryRowContext(ctx, query, date, n.Description, n.Amount, n.CategoryID, string(n.Type))
	t, err := scanTransaction(row)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"transaction_id", t.ID,
		"transaction_date", t.Date.String(),
		"amount", t.Amount,
		"transaction_type", string(t.Type))

	return t, nil
}

// UpdateTransaction implements store.TransactionStore. The merge happens
// in SQL: COALESCE keeps the stored value for every unset field.
func (r *Repository) UpdateTransaction(ctx context.Context, id int64, p core.TransactionPatch) (core.Transaction, error) {
	query := `
		UPDATE transactions
		SET transaction_date = COALESCE(?, transaction_date),
		    description      = COALESCE(?, description),
		    amount           = COALESCE(?, amount),
		    category_id      = COALESCE(?, category_id),
		    transaction_type = COALESCE(?, transaction_type)
		WHERE transaction_id = ?
		RETURNING ` + transactionColumns

	var date, ttype any
	if p.Date != nil {
		date = p.Date.String()
	}
	if p.Type != nil {
		ttype = string(*p.Type)
	}

	row := r.db.QueryRowContext(ctx, query, date, p.Description, p.Amount, p.CategoryID, ttype, id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrTransactionNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction updated", "transaction_id", t.ID)
	return t, nil
}

// DeleteTransaction implements store.TransactionStore
func (r *Repository) DeleteTransaction(ctx context.Context, id int64) error {
	var deleted int64
	err := r.db.QueryRowContext(ctx,
		"DELETE FROM transactions WHERE transaction_id = ? RETURNING transaction_id", id).
		Scan(&deleted)
	if errors.Is(err, sql.ErrNoRows) {
		return core.ErrTransactionNotFound
	}
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction deleted", "transaction_id", id)
	return nil
}

// CreateCategory implements store.CategoryStore. The name must be unique
// ignoring case; the existing row wins.
func (r *Repository) CreateCategory(ctx context.Context, name string) (core.Category, error) {
	var existing int64
	err := r.db.QueryRowContext(ctx,
		"SELECT category_id FROM categories WHERE LOWER(name) = LOWER(?)", name).
		Scan(&existing)
	switch {
	case err == nil:
		return core.Category{}, core.ErrDuplicateCategory
	case !errors.Is(err, sql.ErrNoRows):
		return core.Category{}, fmt.Errorf("check category name: %w", err)
	}

	var c core.Category
	err = r.db.QueryRowContext(ctx,
		"INSERT INTO categories (name) VALUES (?) RETURNING category_id, name", name).
		Scan(&c.ID, &c.Name)
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}

	slog.InfoContext(ctx, "Category created", "category_id", c.ID, "category_name", c.Name)
	return c, nil
}

// ListCategories implements store.CategoryStore
func (r *Repository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT category_id, name FROM categories ORDER BY name ASC")
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []core.Category{}
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category row: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// RenameCategory implements store.CategoryStore. Uniqueness is checked
// against all other categories, so renaming a category to its own name is
// a no-op success.
func (r *Repository) RenameCategory(ctx context.Context, id int64, name string) (core.Category, error) {
	var existing int64
	err := r.db.QueryRowContext(ctx,
		"SELECT category_id FROM categories WHERE LOWER(name) = LOWER(?) AND category_id != ?",
		name, id).
		Scan(&existing)
	switch {
	case err == nil:
		return core.Category{}, core.ErrDuplicateCategory
	case !errors.Is(err, sql.ErrNoRows):
		return core.Category{}, fmt.Errorf("check category name: %w", err)
	}

	var c core.Category
	err = r.db.QueryRowContext(ctx,
		"UPDATE categories SET name = ? WHERE category_id = ? RETURNING category_id, name",
		name, id).
		Scan(&c.ID, &c.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, core.ErrCategoryNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("rename category: %w", err)
	}

	slog.InfoContext(ctx, "Category renamed", "category_id", c.ID, "category_name", c.Name)
	return c, nil
}

// MonthlySummary implements store.ReportStore. The three aggregates run
// inside one read transaction so they observe a single snapshot.
func (r *Repository) MonthlySummary(ctx context.Context, year int, month int) (core.MonthlySummary, error) {
	summary := core.MonthlySummary{Year: year, Month: month}
	key := monthKey(year, month)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return summary, fmt.Errorf("begin summary read: %w", err)
	}
	defer tx.Rollback()

	const totalQuery = `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE transaction_type = ? AND strftime('%Y-%m', transaction_date) = ?`

	if err := tx.QueryRowContext(ctx, totalQuery, string(core.Income), key).Scan(&summary.TotalIncome); err != nil {
		return summary, fmt.Errorf("sum income: %w", err)
	}
	if err := tx.QueryRowContext(ctx, totalQuery, string(core.Expense), key).Scan(&summary.TotalExpenses); err != nil {
		return summary, fmt.Errorf("sum expenses: %w", err)
	}

	// Ties on the top spot break lexicographically by name.
	const topQuery = `
		SELECT c.name, SUM(t.amount) AS spent
		FROM transactions t
		JOIN categories c ON t.category_id = c.category_id
		WHERE t.transaction_type = 'expense' AND strftime('%Y-%m', t.transaction_date) = ?
		GROUP BY c.category_id, c.name
		ORDER BY spent DESC, c.name ASC
		LIMIT 1`

	var (
		name  string
		spent float64
	)
	err = tx.QueryRowContext(ctx, topQuery, key).Scan(&name, &spent)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// No expense rows this month: top_category stays absent.
	case err != nil:
		return summary, fmt.Errorf("top expense category: %w", err)
	default:
		summary.TopCategory = &name
		summary.TopCategorySpent = spent
	}

	if err := tx.Commit(); err != nil {
		return summary, fmt.Errorf("close summary read: %w", err)
	}
	return summary, nil
}

// SpendingByCategory implements store.ReportStore
func (r *Repository) SpendingByCategory(ctx context.Context, year int, month int) ([]core.CategorySpending, error) {
	const query = `
		SELECT c.name, SUM(t.amount) AS total_spent
		FROM transactions t
		JOIN categories c ON t.category_id = c.category_id
		WHERE t.transaction_type = 'expense' AND strftime('%Y-%m', t.transaction_date) = ?
		GROUP BY c.category_id, c.name
		ORDER BY total_spent DESC, c.name ASC`

	rows, err := r.db.QueryContext(ctx, query, monthKey(year, month))
	if err != nil {
		return nil, fmt.Errorf("spending by category: %w", err)
	}
	defer rows.Close()

	spending := []core.CategorySpending{}
	for rows.Next() {
		var s core.CategorySpending
		if err := rows.Scan(&s.Category, &s.TotalSpent); err != nil {
			return nil, fmt.Errorf("scan spending row: %w", err)
		}
		spending = append(spending, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("spending by category: %w", err)
	}
	return spending, nil
}
