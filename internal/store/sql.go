package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/mattn/go-sqlite3"

	"github.com/guimove/trainfit/internal/model"
)

// dialect holds what differs between the supported databases.
type dialect struct {
	driver string
	schema []string
}

var dialects = map[string]dialect{
	"postgres": {
		driver: "pgx",
		schema: []string{
			`CREATE TABLE IF NOT EXISTS trainlines (
				id BIGSERIAL PRIMARY KEY,
				name TEXT NOT NULL UNIQUE,
				occupied_at TIMESTAMPTZ
			)`,
			`CREATE TABLE IF NOT EXISTS trains (
				id BIGSERIAL PRIMARY KEY,
				name TEXT NOT NULL UNIQUE,
				cost DOUBLE PRECISION NOT NULL,
				weight DOUBLE PRECISION NOT NULL,
				volume DOUBLE PRECISION NOT NULL,
				line_id BIGINT REFERENCES trainlines(id),
				ready_to_book BOOLEAN NOT NULL DEFAULT FALSE,
				booked_at TIMESTAMPTZ
			)`,
			`CREATE TABLE IF NOT EXISTS parcels (
				id BIGSERIAL PRIMARY KEY,
				weight DOUBLE PRECISION NOT NULL,
				volume DOUBLE PRECISION NOT NULL,
				train_id BIGINT REFERENCES trains(id)
			)`,
			`CREATE INDEX IF NOT EXISTS parcels_train_id_idx ON parcels (train_id)`,
		},
	},
	"sqlite": {
		driver: "sqlite3",
		schema: []string{
			`CREATE TABLE IF NOT EXISTS trainlines (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL UNIQUE,
				occupied_at TIMESTAMP
			)`,
			`CREATE TABLE IF NOT EXISTS trains (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL UNIQUE,
				cost REAL NOT NULL,
				weight REAL NOT NULL,
				volume REAL NOT NULL,
				line_id INTEGER REFERENCES trainlines(id),
				ready_to_book BOOLEAN NOT NULL DEFAULT FALSE,
				booked_at TIMESTAMP
			)`,
			`CREATE TABLE IF NOT EXISTS parcels (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				weight REAL NOT NULL,
				volume REAL NOT NULL,
				train_id INTEGER REFERENCES trains(id)
			)`,
			`CREATE INDEX IF NOT EXISTS parcels_train_id_idx ON parcels (train_id)`,
		},
	},
}

// SQL is a Store over database/sql. Postgres goes through the pgx stdlib
// driver, SQLite through go-sqlite3.
type SQL struct {
	db      *sql.DB
	dialect dialect
}

// Open connects to the database named by driver ("postgres" or "sqlite").
func Open(ctx context.Context, driver, dsn string) (*SQL, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", driver, err)
	}
	if driver == "sqlite" {
		// One connection keeps ":memory:" databases and connection pragmas
		// shared across queries.
		db.SetMaxOpenConns(1)
		if _, err := db.ExecContext(ctx, `PRAGMA foreign_keys = ON`); err != nil {
			db.Close()
			return nil, fmt.Errorf("enabling foreign keys: %w", err)
		}
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to %s database: %w", driver, err)
	}
	return &SQL{db: db, dialect: d}, nil
}

// Migrate creates the schema if it does not exist.
func (s *SQL) Migrate(ctx context.Context) error {
	for _, stmt := range s.dialect.schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrating schema: %w", err)
		}
	}
	return nil
}

const trainColumns = `id, name, cost, weight, volume, line_id, ready_to_book, booked_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanTrain(row scanner) (model.Train, error) {
	var (
		t      model.Train
		lineID sql.NullInt64
		booked sql.NullTime
	)
	if err := row.Scan(&t.ID, &t.Name, &t.Cost, &t.Weight, &t.Volume, &lineID, &t.ReadyToBook, &booked); err != nil {
		return t, err
	}
	if lineID.Valid {
		id := lineID.Int64
		t.LineID = &id
	}
	if booked.Valid {
		at := booked.Time
		t.BookedAt = &at
	}
	return t, nil
}

func (s *SQL) CreateTrainline(ctx context.Context, in model.TrainlineInput) (model.Trainline, error) {
	l := model.Trainline{Name: in.Name}
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO trainlines (name) VALUES ($1) RETURNING id`, in.Name).Scan(&l.ID)
	if err != nil {
		return l, fmt.Errorf("creating trainline %q: %w", in.Name, classify(err))
	}
	return l, nil
}

func (s *SQL) ListTrainlines(ctx context.Context) ([]model.Trainline, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, occupied_at FROM trainlines ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing trainlines: %w", err)
	}
	defer rows.Close()

	out := []model.Trainline{}
	for rows.Next() {
		var (
			l        model.Trainline
			occupied sql.NullTime
		)
		if err := rows.Scan(&l.ID, &l.Name, &occupied); err != nil {
			return nil, fmt.Errorf("scanning trainline: %w", err)
		}
		if occupied.Valid {
			at := occupied.Time
			l.OccupiedAt = &at
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *SQL) CreateTrain(ctx context.Context, in model.TrainInput) (model.Train, error) {
	t := model.Train{
		Name:        in.Name,
		Cost:        in.Cost,
		Weight:      in.Weight,
		Volume:      in.Volume,
		LineID:      in.LineID,
		ReadyToBook: in.ReadyToBook,
	}
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO trains (name, cost, weight, volume, line_id, ready_to_book)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		in.Name, in.Cost, in.Weight, in.Volume, nullInt64(in.LineID), in.ReadyToBook).Scan(&t.ID)
	if err != nil {
		return t, fmt.Errorf("creating train %q: %w", in.Name, classify(err))
	}
	return t, nil
}

func (s *SQL) GetTrain(ctx context.Context, id int64) (model.Train, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+trainColumns+` FROM trains WHERE id = $1`, id)
	t, err := scanTrain(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return t, fmt.Errorf("train %d: %w", id, ErrNotFound)
		}
		return t, fmt.Errorf("getting train %d: %w", id, err)
	}
	return t, nil
}

func (s *SQL) ListTrains(ctx context.Context) ([]model.Train, error) {
	return s.queryTrains(ctx, `SELECT `+trainColumns+` FROM trains WHERE booked_at IS NULL ORDER BY name`)
}

func (s *SQL) queryTrains(ctx context.Context, query string, args ...any) ([]model.Train, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying trains: %w", err)
	}
	defer rows.Close()

	out := []model.Train{}
	for rows.Next() {
		t, err := scanTrain(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning train: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *SQL) CreateParcel(ctx context.Context, in model.ParcelInput) (model.Parcel, error) {
	p := model.Parcel{Weight: in.Weight, Volume: in.Volume}
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO parcels (weight, volume) VALUES ($1, $2) RETURNING id`, in.Weight, in.Volume).Scan(&p.ID)
	if err != nil {
		return p, fmt.Errorf("creating parcel: %w", err)
	}
	return p, nil
}

func (s *SQL) ListParcels(ctx context.Context) ([]model.Parcel, error) {
	return s.queryParcels(ctx, `SELECT id, weight, volume, train_id FROM parcels ORDER BY id`)
}

func (s *SQL) queryParcels(ctx context.Context, query string) ([]model.Parcel, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying parcels: %w", err)
	}
	defer rows.Close()

	out := []model.Parcel{}
	for rows.Next() {
		var (
			p       model.Parcel
			trainID sql.NullInt64
		)
		if err := rows.Scan(&p.ID, &p.Weight, &p.Volume, &trainID); err != nil {
			return nil, fmt.Errorf("scanning parcel: %w", err)
		}
		if trainID.Valid {
			id := trainID.Int64
			p.TrainID = &id
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQL) Snapshot(ctx context.Context) (model.Snapshot, error) {
	trains, err := s.queryTrains(ctx,
		`SELECT `+trainColumns+` FROM trains WHERE ready_to_book = FALSE AND booked_at IS NULL ORDER BY id`)
	if err != nil {
		return model.Snapshot{}, err
	}
	parcels, err := s.queryParcels(ctx,
		`SELECT id, weight, volume, train_id FROM parcels WHERE train_id IS NULL ORDER BY id`)
	if err != nil {
		return model.Snapshot{}, err
	}
	return model.SnapshotFromRecords(trains, parcels, time.Now().UTC()), nil
}

func (s *SQL) ApplyAssignment(ctx context.Context, a model.Assignment) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	trainIDs := make([]int64, 0, len(a))
	for id := range a {
		trainIDs = append(trainIDs, id)
	}
	sort.Slice(trainIDs, func(i, j int) bool { return trainIDs[i] < trainIDs[j] })

	linked := 0
	for _, trainID := range trainIDs {
		parcelIDs := a[trainID]
		if len(parcelIDs) == 0 {
			continue
		}
		res, err := tx.ExecContext(ctx, `UPDATE trains SET ready_to_book = TRUE WHERE id = $1`, trainID)
		if err != nil {
			return 0, fmt.Errorf("marking train %d ready: %w", trainID, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return 0, fmt.Errorf("train %d: %w", trainID, ErrNotFound)
		}

		for _, pid := range parcelIDs {
			res, err := tx.ExecContext(ctx,
				`UPDATE parcels SET train_id = $1 WHERE id = $2 AND train_id IS NULL`, trainID, pid)
			if err != nil {
				return 0, fmt.Errorf("linking parcel %d to train %d: %w", pid, trainID, classify(err))
			}
			n, _ := res.RowsAffected()
			if n == 0 {
				var exists int
				if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM parcels WHERE id = $1`, pid).Scan(&exists); err != nil {
					return 0, fmt.Errorf("checking parcel %d: %w", pid, err)
				}
				if exists == 0 {
					return 0, fmt.Errorf("parcel %d: %w", pid, ErrNotFound)
				}
			}
			linked += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing assignment: %w", err)
	}
	return linked, nil
}

func (s *SQL) BookReadyTrains(ctx context.Context, at time.Time) ([]model.Train, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx,
		`SELECT `+trainColumns+` FROM trains WHERE ready_to_book = TRUE AND booked_at IS NULL ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying ready trains: %w", err)
	}
	booked := []model.Train{}
	for rows.Next() {
		t, err := scanTrain(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning train: %w", err)
		}
		booked = append(booked, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("querying ready trains: %w", err)
	}

	at = at.UTC()
	for i := range booked {
		if _, err := tx.ExecContext(ctx, `UPDATE trains SET booked_at = $1 WHERE id = $2`, at, booked[i].ID); err != nil {
			return nil, fmt.Errorf("booking train %d: %w", booked[i].ID, err)
		}
		stamp := at
		booked[i].BookedAt = &stamp
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing booking: %w", err)
	}
	return booked, nil
}

func (s *SQL) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQL) Close() error {
	return s.db.Close()
}

// classify maps driver constraint violations onto the store's sentinels.
func classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%w: %s", ErrConflict, pgErr.Detail)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%w: %s", ErrNotFound, pgErr.Detail)
		}
		return err
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		switch liteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique:
			return fmt.Errorf("%w: %s", ErrConflict, liteErr.Error())
		case sqlite3.ErrConstraintForeignKey:
			return fmt.Errorf("%w: %s", ErrNotFound, liteErr.Error())
		}
	}
	return err
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
