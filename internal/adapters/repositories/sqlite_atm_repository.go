package repositories

import (
	"atm-route-service/internal/domain"
	"atm-route-service/internal/platform/obs"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// SQLite-backed implementation of the ATMRepository port.
type SqliteATMRepository struct{ DB *sql.DB }

func NewSqliteATMRepository(db *sql.DB) *SqliteATMRepository {
	return &SqliteATMRepository{DB: db}
}

const sqliteATMColumns = `
		id,
		name,
		lon,
		lat,
		remaining_cash,
		denomination,
		starting_cash`

// Return all ATMs stored in the database.
func (s *SqliteATMRepository) ListATMs(ctx context.Context) (_ []domain.ATM, err error) {
	defer obs.Time(ctx, "atms.sqlite.List")(&err)

	if s.DB == nil {
		return nil, errors.New("sqlite atm repository: DB is nil")
	}

	query := `SELECT` + sqliteATMColumns + `
	FROM atms
	ORDER BY id;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list atms: query atms table: %w", err)
	}
	defer rows.Close()

	atms, err := scanATMRows(rows)
	if err != nil {
		return nil, fmt.Errorf("list atms: %w", err)
	}
	return atms, nil
}

// Return the ATMs with the given ids in request order, plus the ids not found.
func (s *SqliteATMRepository) GetATMs(ctx context.Context, ids []string) (_ []domain.ATM, _ []string, err error) {
	defer obs.Time(ctx, "atms.sqlite.Get")(&err)

	if s.DB == nil {
		return nil, nil, errors.New("sqlite atm repository: DB is nil")
	}

	uniq := uniqueIDs(ids)
	if len(uniq) == 0 {
		return []domain.ATM{}, nil, nil
	}

	ph := make([]string, len(uniq))
	args := make([]any, len(uniq))
	for i, id := range uniq {
		ph[i] = "?"
		args[i] = id
	}

	// SQLite does not support binding slices directly in an IN (...) clause.
	// Only the placeholder structure is interpolated; all values remain parameterized.
	query := fmt.Sprintf(`SELECT`+sqliteATMColumns+`
	FROM atms
	WHERE id IN (%s);
	`, strings.Join(ph, ","))

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("get atms: query atms table: %w", err)
	}
	defer rows.Close()

	found, err := scanATMRows(rows)
	if err != nil {
		return nil, nil, fmt.Errorf("get atms: %w", err)
	}

	atms, missing := orderByIDs(uniq, found)
	return atms, missing, nil
}

// Insert or replace ATMs in a single transaction.
func (s *SqliteATMRepository) UpsertATMs(ctx context.Context, atms []domain.ATM) (err error) {
	defer obs.Time(ctx, "atms.sqlite.Upsert")(&err)

	if s.DB == nil {
		return errors.New("sqlite atm repository: DB is nil")
	}

	if len(atms) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("upsert atms: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT OR REPLACE INTO atms (`+sqliteATMColumns+`
	)
	VALUES (?, ?, ?, ?, ?, ?, ?);
	`)
	if err != nil {
		return fmt.Errorf("upsert atms: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, a := range atms {
		if _, err := stmt.ExecContext(ctx,
			a.ID, a.Name, a.Location.Lon, a.Location.Lat, a.RemainingCash,
			nullInt(a.Denomination), nullInt(a.StartingCash),
		); err != nil {
			return fmt.Errorf("upsert atms: insert id=%q: %w", a.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("upsert atms: commit tx: %w", err)
	}

	return nil
}

func scanATMRows(rows *sql.Rows) ([]domain.ATM, error) {
	atms := make([]domain.ATM, 0, 64)
	for rows.Next() {
		var (
			a            domain.ATM
			denomination sql.NullInt64
			startingCash sql.NullInt64
		)
		if err := rows.Scan(
			&a.ID, &a.Name, &a.Location.Lon, &a.Location.Lat, &a.RemainingCash,
			&denomination, &startingCash,
		); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		a.Denomination = intPtr(denomination)
		a.StartingCash = intPtr(startingCash)
		atms = append(atms, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration: %w", err)
	}

	return atms, nil
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	uniq := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		uniq = append(uniq, id)
	}
	return uniq
}

// orderByIDs returns found ATMs in the order of ids, and the ids with no match.
func orderByIDs(ids []string, found []domain.ATM) ([]domain.ATM, []string) {
	byID := make(map[string]domain.ATM, len(found))
	for _, a := range found {
		byID[a.ID] = a
	}

	out := make([]domain.ATM, 0, len(ids))
	var missing []string
	for _, id := range ids {
		a, ok := byID[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		out = append(out, a)
	}
	return out, missing
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}
