package catalog

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"ProductDesk/internal/product"
)

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 3 * time.Second
	pgUniqueCode = "23505"
)

const schema = `
CREATE TABLE IF NOT EXISTS products (
	id           TEXT PRIMARY KEY,
	title        TEXT NOT NULL,
	price        DOUBLE PRECISION NOT NULL CHECK (price >= 0),
	description  TEXT NOT NULL DEFAULT '',
	category     TEXT NOT NULL,
	image        TEXT NOT NULL DEFAULT '',
	rating_rate  DOUBLE PRECISION NOT NULL DEFAULT 0,
	rating_count INTEGER NOT NULL DEFAULT 0,
	availability TEXT NOT NULL DEFAULT 'InStock'
)`

const productColumns = `id, title, price, description, category, image, rating_rate, rating_count, availability`

type PostgresStore struct {
	db *sql.DB
}

// OpenPostgres opens dsn with the pgx driver and creates the products table
// when it is missing.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	s := NewPostgresStore(db)
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Close() error { return s.db.Close() }

func (s *PostgresStore) Migrate(ctx context.Context) error {
	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx, schema)
		return err
	})
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		return s.db.PingContext(ctx)
	})
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(row scanner) (product.Product, error) {
	var (
		p     product.Product
		avail string
	)
	err := row.Scan(&p.ID, &p.Title, &p.Price, &p.Description, &p.Category, &p.Image, &p.Rating, &p.RatingCount, &avail)
	p.Availability = product.Availability(avail)
	return p, err
}

func (s *PostgresStore) ListSortedByID(ctx context.Context) ([]product.Product, error) {
	var out []product.Product

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		rows, err := s.db.QueryContext(ctx, `SELECT `+productColumns+` FROM products ORDER BY id ASC`)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = make([]product.Product, 0, 16)
		for rows.Next() {
			p, err := scanProduct(rows)
			if err != nil {
				return err
			}
			out = append(out, p)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (product.Product, bool, error) {
	var (
		p   product.Product
		err error
	)

	err = withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		p, err = scanProduct(s.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
		return err
	})

	if errors.Is(err, sql.ErrNoRows) {
		return product.Product{}, false, nil
	}
	if err != nil {
		return product.Product{}, false, err
	}
	return p, true, nil
}

func (s *PostgresStore) Create(ctx context.Context, p product.Product) error {
	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO products (`+productColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, p.ID, p.Title, p.Price, p.Description, p.Category, p.Image, p.Rating, p.RatingCount, string(p.Availability))

		if isUniqueViolation(err) {
			return ErrExists
		}
		return err
	})
}

func (s *PostgresStore) Update(ctx context.Context, p product.Product) (product.Product, error) {
	var (
		out product.Product
		err error
	)

	err = withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		out, err = scanProduct(s.db.QueryRowContext(ctx, `
			UPDATE products
			SET title = $2, price = $3, description = $4, category = $5, image = $6, availability = $7
			WHERE id = $1
			RETURNING `+productColumns,
			p.ID, p.Title, p.Price, p.Description, p.Category, p.Image, string(p.Availability)))
		return err
	})

	if errors.Is(err, sql.ErrNoRows) {
		return product.Product{}, ErrNotFound
	}
	return out, err
}

func (s *PostgresStore) Delete(ctx context.Context, id string) (product.Product, error) {
	var (
		out product.Product
		err error
	)

	err = withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		out, err = scanProduct(s.db.QueryRowContext(ctx, `DELETE FROM products WHERE id = $1 RETURNING `+productColumns, id))
		return err
	})

	if errors.Is(err, sql.ErrNoRows) {
		return product.Product{}, ErrNotFound
	}
	return out, err
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueCode
}
