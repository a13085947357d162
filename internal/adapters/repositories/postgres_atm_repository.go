package repositories

import (
	"atm-route-service/internal/domain"
	"atm-route-service/internal/platform/obs"
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type atmRow struct {
	ID            string        `db:"id"`
	Name          string        `db:"name"`
	Lon           float64       `db:"lon"`
	Lat           float64       `db:"lat"`
	RemainingCash float64       `db:"remaining_cash"`
	Denomination  sql.NullInt64 `db:"denomination"`
	StartingCash  sql.NullInt64 `db:"starting_cash"`
}

func (r atmRow) toDomain() domain.ATM {
	return domain.ATM{
		ID:            r.ID,
		Name:          r.Name,
		Location:      domain.Coordinates{Lon: r.Lon, Lat: r.Lat},
		RemainingCash: r.RemainingCash,
		Denomination:  intPtr(r.Denomination),
		StartingCash:  intPtr(r.StartingCash),
	}
}

func atmRowFromDomain(a domain.ATM) atmRow {
	return atmRow{
		ID:            a.ID,
		Name:          a.Name,
		Lon:           a.Location.Lon,
		Lat:           a.Location.Lat,
		RemainingCash: a.RemainingCash,
		Denomination:  nullInt(a.Denomination),
		StartingCash:  nullInt(a.StartingCash),
	}
}

// Postgres-backed implementation of the ATMRepository port.
// The handle is expected to use the pgx stdlib driver.
type PostgresATMRepository struct {
	db *sqlx.DB
}

func NewPostgresATMRepository(db *sql.DB) *PostgresATMRepository {
	return &PostgresATMRepository{db: sqlx.NewDb(db, "pgx")}
}

func (r *PostgresATMRepository) ListATMs(ctx context.Context) (_ []domain.ATM, err error) {
	defer obs.Time(ctx, "atms.postgres.List")(&err)

	if r.db == nil {
		return nil, errors.New("postgres atm repository: DB is nil")
	}

	const query = `
		SELECT id, name, lon, lat, remaining_cash, denomination, starting_cash
		FROM atms
		ORDER BY id`

	var rows []atmRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list atms: %w", err)
	}

	atms := make([]domain.ATM, 0, len(rows))
	for _, row := range rows {
		atms = append(atms, row.toDomain())
	}
	return atms, nil
}

func (r *PostgresATMRepository) GetATMs(ctx context.Context, ids []string) (_ []domain.ATM, _ []string, err error) {
	defer obs.Time(ctx, "atms.postgres.Get")(&err)

	if r.db == nil {
		return nil, nil, errors.New("postgres atm repository: DB is nil")
	}

	uniq := uniqueIDs(ids)
	if len(uniq) == 0 {
		return []domain.ATM{}, nil, nil
	}

	const query = `
		SELECT id, name, lon, lat, remaining_cash, denomination, starting_cash
		FROM atms
		WHERE id = ANY($1::text[])`

	var rows []atmRow
	if err := r.db.SelectContext(ctx, &rows, query, uniq); err != nil {
		return nil, nil, fmt.Errorf("get atms: %w", err)
	}

	found := make([]domain.ATM, 0, len(rows))
	for _, row := range rows {
		found = append(found, row.toDomain())
	}

	atms, missing := orderByIDs(uniq, found)
	return atms, missing, nil
}

func (r *PostgresATMRepository) UpsertATMs(ctx context.Context, atms []domain.ATM) (err error) {
	defer obs.Time(ctx, "atms.postgres.Upsert")(&err)

	if r.db == nil {
		return errors.New("postgres atm repository: DB is nil")
	}

	if len(atms) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("upsert atms: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareNamedContext(ctx, `
		INSERT INTO atms (id, name, lon, lat, remaining_cash, denomination, starting_cash)
		VALUES (:id, :name, :lon, :lat, :remaining_cash, :denomination, :starting_cash)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
			lon = EXCLUDED.lon,
			lat = EXCLUDED.lat,
			remaining_cash = EXCLUDED.remaining_cash,
			denomination = EXCLUDED.denomination,
			starting_cash = EXCLUDED.starting_cash`)
	if err != nil {
		return fmt.Errorf("upsert atms: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, a := range atms {
		if _, err := stmt.ExecContext(ctx, atmRowFromDomain(a)); err != nil {
			return fmt.Errorf("upsert atms: insert id=%q: %w", a.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("upsert atms: commit tx: %w", err)
	}

	return nil
}
