package property

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"landledger/pkg/domain"
	"landledger/pkg/platform/sentinel"
)

// PostgresStore persists property records in PostgreSQL. The owner column is
// the ownership index: lookups select on it, so the explicit append/remove
// index mutations of the memory store collapse into the row update. The
// unordered-removal semantics are preserved trivially (sets have no order).
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore constructs a PostgreSQL-backed property store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the property tables when they do not exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS properties (
			id              BIGINT PRIMARY KEY,
			title           TEXT NOT NULL,
			location        TEXT NOT NULL DEFAULT '',
			category        TEXT NOT NULL DEFAULT '',
			size            BIGINT NOT NULL,
			bedrooms        INT NOT NULL DEFAULT 0,
			bathrooms       INT NOT NULL DEFAULT 0,
			features        TEXT NOT NULL DEFAULT '',
			description     TEXT NOT NULL DEFAULT '',
			document_hash   TEXT NOT NULL,
			survey_hash     TEXT NOT NULL DEFAULT '',
			registered      BOOLEAN NOT NULL DEFAULT TRUE,
			verification    TEXT NOT NULL DEFAULT 'PENDING',
			tokenized       BOOLEAN NOT NULL DEFAULT FALSE,
			for_sale        BOOLEAN NOT NULL DEFAULT FALSE,
			for_rent        BOOLEAN NOT NULL DEFAULT FALSE,
			sale_price      BIGINT NOT NULL DEFAULT 0,
			rent_price      BIGINT NOT NULL DEFAULT 0,
			owner           TEXT NOT NULL,
			verifier        TEXT NOT NULL DEFAULT '',
			registered_at   TIMESTAMPTZ NOT NULL,
			verified_at     TIMESTAMPTZ,
			minted_at       TIMESTAMPTZ,
			rental_tenant   TEXT NOT NULL DEFAULT '',
			rental_start    TIMESTAMPTZ,
			rental_duration BIGINT NOT NULL DEFAULT 0,
			rental_active   BOOLEAN NOT NULL DEFAULT FALSE
		);
		CREATE INDEX IF NOT EXISTS properties_owner_idx ON properties (owner);
		CREATE TABLE IF NOT EXISTS property_counter (
			id      INT PRIMARY KEY CHECK (id = 0),
			next_id BIGINT NOT NULL
		);
		INSERT INTO property_counter (id, next_id) VALUES (0, 0) ON CONFLICT (id) DO NOTHING;
		CREATE TABLE IF NOT EXISTS property_viewers (
			seq         BIGSERIAL PRIMARY KEY,
			property_id BIGINT NOT NULL,
			viewer      TEXT NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("ensure property schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) AllocateID(ctx context.Context) (domain.PropertyID, error) {
	var allocated int64
	err := s.pool.QueryRow(ctx, `
		UPDATE property_counter SET next_id = next_id + 1
		WHERE id = 0
		RETURNING next_id - 1`).Scan(&allocated)
	if err != nil {
		return 0, fmt.Errorf("allocate property id: %w", err)
	}
	return domain.PropertyID(allocated), nil
}

func (s *PostgresStore) Save(ctx context.Context, p Property) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO properties (
			id, title, location, category, size, bedrooms, bathrooms, features,
			description, document_hash, survey_hash, registered, verification,
			tokenized, for_sale, for_rent, sale_price, rent_price, owner,
			verifier, registered_at, verified_at, minted_at, rental_tenant,
			rental_start, rental_duration, rental_active
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27
		)
		ON CONFLICT (id) DO UPDATE SET
			survey_hash = EXCLUDED.survey_hash, verification = EXCLUDED.verification,
			tokenized = EXCLUDED.tokenized, for_sale = EXCLUDED.for_sale,
			for_rent = EXCLUDED.for_rent, sale_price = EXCLUDED.sale_price,
			rent_price = EXCLUDED.rent_price, owner = EXCLUDED.owner,
			verifier = EXCLUDED.verifier, verified_at = EXCLUDED.verified_at,
			minted_at = EXCLUDED.minted_at, rental_tenant = EXCLUDED.rental_tenant,
			rental_start = EXCLUDED.rental_start,
			rental_duration = EXCLUDED.rental_duration,
			rental_active = EXCLUDED.rental_active`,
		int64(p.ID), p.Info.Title, p.Info.Location, p.Info.Category,
		int64(p.Info.Size), int32(p.Info.Bedrooms), int32(p.Info.Bathrooms),
		p.Info.Features, p.Info.Description, p.Info.DocumentHash,
		p.Info.SurveyHash, p.Status.Registered,
		p.Status.Verification.String(), p.Status.Tokenized, p.Status.ForSale,
		p.Status.ForRent, int64(p.Status.SalePrice), int64(p.Status.RentPrice),
		p.Status.Owner.String(), p.Status.Verifier.String(),
		p.Timestamps.RegisteredAt, nullTime(p.Timestamps.VerifiedAt),
		nullTime(p.Timestamps.MintedAt), p.Rental.Tenant.String(),
		nullTime(p.Rental.StartTime), int64(p.Rental.Duration/time.Second),
		p.Rental.Active,
	)
	if err != nil {
		return fmt.Errorf("save property: %w", err)
	}
	return nil
}

func (s *PostgresStore) Find(ctx context.Context, id domain.PropertyID) (Property, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, title, location, category, size, bedrooms, bathrooms,
			features, description, document_hash, survey_hash, registered,
			verification, tokenized, for_sale, for_rent, sale_price,
			rent_price, owner, verifier, registered_at, verified_at,
			minted_at, rental_tenant, rental_start, rental_duration,
			rental_active
		FROM properties WHERE id = $1`, int64(id))

	var (
		p                     Property
		recordID, size        int64
		bedrooms, bathrooms   int32
		verification          string
		salePrice, rentPrice  int64
		owner, verifier       string
		verifiedAt, mintedAt  *time.Time
		tenant                string
		rentalStart           *time.Time
		rentalDurationSeconds int64
	)
	err := row.Scan(&recordID, &p.Info.Title, &p.Info.Location,
		&p.Info.Category, &size, &bedrooms, &bathrooms, &p.Info.Features,
		&p.Info.Description, &p.Info.DocumentHash, &p.Info.SurveyHash,
		&p.Status.Registered, &verification, &p.Status.Tokenized,
		&p.Status.ForSale, &p.Status.ForRent, &salePrice, &rentPrice,
		&owner, &verifier, &p.Timestamps.RegisteredAt, &verifiedAt,
		&mintedAt, &tenant, &rentalStart, &rentalDurationSeconds,
		&p.Rental.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Property{}, sentinel.ErrNotFound
		}
		return Property{}, fmt.Errorf("find property: %w", err)
	}

	p.ID = domain.PropertyID(recordID)
	p.Info.Size = uint64(size)
	p.Info.Bedrooms = uint32(bedrooms)
	p.Info.Bathrooms = uint32(bathrooms)
	p.Status.Verification = domain.VerificationStatus(verification)
	p.Status.SalePrice = domain.Amount(salePrice)
	p.Status.RentPrice = domain.Amount(rentPrice)
	p.Status.Owner = domain.Address(owner)
	p.Status.Verifier = domain.Address(verifier)
	if verifiedAt != nil {
		p.Timestamps.VerifiedAt = *verifiedAt
	}
	if mintedAt != nil {
		p.Timestamps.MintedAt = *mintedAt
	}
	p.Rental.Tenant = domain.Address(tenant)
	if rentalStart != nil {
		p.Rental.StartTime = *rentalStart
	}
	p.Rental.Duration = time.Duration(rentalDurationSeconds) * time.Second
	return p, nil
}

// AppendToOwner is a no-op: the owner column written by Save is the index.
func (s *PostgresStore) AppendToOwner(context.Context, domain.Address, domain.PropertyID) error {
	return nil
}

// RemoveFromOwner is a no-op: ownership changes land via Save.
func (s *PostgresStore) RemoveFromOwner(context.Context, domain.Address, domain.PropertyID) error {
	return nil
}

func (s *PostgresStore) ListByOwner(ctx context.Context, owner domain.Address) ([]domain.PropertyID, error) {
	rows, err := s.pool.Query(ctx, `SELECT id FROM properties WHERE owner = $1`, owner.String())
	if err != nil {
		return nil, fmt.Errorf("list properties by owner: %w", err)
	}
	defer rows.Close()
	return scanIDs(rows)
}

func (s *PostgresStore) ListApproved(ctx context.Context) ([]domain.PropertyID, error) {
	rows, err := s.pool.Query(ctx, `SELECT id FROM properties WHERE verification = 'APPROVED' ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list approved properties: %w", err)
	}
	defer rows.Close()
	return scanIDs(rows)
}

func (s *PostgresStore) AppendViewer(ctx context.Context, id domain.PropertyID, viewer domain.Address) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO property_viewers (property_id, viewer) VALUES ($1, $2)`,
		int64(id), viewer.String())
	if err != nil {
		return fmt.Errorf("append viewer: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListViewers(ctx context.Context, id domain.PropertyID) ([]domain.Address, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT viewer FROM property_viewers WHERE property_id = $1 ORDER BY seq`,
		int64(id))
	if err != nil {
		return nil, fmt.Errorf("list viewers: %w", err)
	}
	defer rows.Close()

	var out []domain.Address
	for rows.Next() {
		var viewer string
		if err := rows.Scan(&viewer); err != nil {
			return nil, fmt.Errorf("scan viewer: %w", err)
		}
		out = append(out, domain.Address(viewer))
	}
	return out, rows.Err()
}

func scanIDs(rows pgx.Rows) ([]domain.PropertyID, error) {
	var out []domain.PropertyID
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan property id: %w", err)
		}
		out = append(out, domain.PropertyID(id))
	}
	return out, rows.Err()
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
