package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"tandem/internal/domain/ledger"
	"tandem/internal/domain/partnership"
)

// fetchLimit bounds a single query's result set. Household ledgers stay well
// under this; hitting it means the date range is pathological.
const fetchLimit = 10000

type LedgerRepository struct {
	db *DB
}

func NewLedgerRepository(db *DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// FetchTransactions returns all records owned by any member of the scope
// within the filter range, ordered by date ascending. Category filtering
// happens in SQL so large ledgers never cross the wire.
func (r *LedgerRepository) FetchTransactions(ctx context.Context, scope partnership.Context, filter ledger.Filter) ([]ledger.Record, error) {
	query := `
		SELECT id, owner_id, partnership_id, amount, currency, category, transaction_date, type, attachment_ref
		FROM transactions
		WHERE owner_id = ANY($1)
		  AND transaction_date >= $2
		  AND transaction_date <= $3
		  AND ($4 = 0 OR category = ANY($5))
		ORDER BY transaction_date ASC
		LIMIT $6
	`

	rows, err := r.db.QueryContext(
		ctx, query,
		pq.Array(scope.MemberIDs()),
		filter.Range.Start, filter.Range.End,
		len(filter.Categories), pq.Array(filter.Categories),
		fetchLimit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transactions: %w", err)
	}
	defer rows.Close()

	var records []ledger.Record
	for rows.Next() {
		var record ledger.Record
		var amount string
		var partnershipID, attachmentRef sql.NullString

		err := rows.Scan(
			&record.ID, &record.OwnerID, &partnershipID, &amount,
			&record.Currency, &record.Category, &record.Date, &record.Type,
			&attachmentRef,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}

		record.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("invalid amount %q for transaction %s: %w", amount, record.ID, err)
		}
		if partnershipID.Valid {
			record.PartnershipID = &partnershipID.String
		}
		if attachmentRef.Valid {
			record.AttachmentRef = &attachmentRef.String
		}
		record.Date = record.Date.UTC()

		records = append(records, record)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return records, nil
}

// FetchBudgetThresholds returns the per-category monthly thresholds the user
// has configured. Categories without a threshold are simply absent.
func (r *LedgerRepository) FetchBudgetThresholds(ctx context.Context, userID int64) (map[string]decimal.Decimal, error) {
	query := `
		SELECT category, threshold
		FROM budget_thresholds
		WHERE user_id = $1
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch budget thresholds: %w", err)
	}
	defer rows.Close()

	thresholds := make(map[string]decimal.Decimal)
	for rows.Next() {
		var category, raw string
		if err := rows.Scan(&category, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan budget threshold: %w", err)
		}
		value, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid threshold %q for category %s: %w", raw, category, err)
		}
		thresholds[category] = value
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating budget thresholds: %w", err)
	}

	return thresholds, nil
}
