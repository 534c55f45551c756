// Package store reads inbound emails and writes listings to Postgres.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/a3tai/copa-listings/internal/config"
	"github.com/a3tai/copa-listings/internal/listing"
)

const applicationName = "copa-listings"

// Store is the Postgres-backed email and listing repository.
type Store struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// Open connects to the database described by cfg and verifies the connection.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*Store, error) {
	if cfg.URL == "" {
		return nil, errors.New("database url is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	poolCfg.ConnConfig.RuntimeParams["application_name"] = applicationName

	timeout := cfg.ConnTimeout
	if timeout <= 0 {
		timeout = config.DefaultDBConnTimeout
	}
	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger.Info("connected to database",
		zap.String("host", poolCfg.ConnConfig.Host),
		zap.String("database", poolCfg.ConnConfig.Database),
		zap.Int32("max_conns", poolCfg.MaxConns),
	)
	return &Store{db: pool, logger: logger}, nil
}

// Close releases the pool.
func (s *Store) Close() {
	s.db.Close()
}

const emailColumns = `id, COALESCE(subject, ''), COALESCE(from_address, ''), COALESCE(raw_text, ''),
	COALESCE(raw_html, ''), received_date, processed, listing_id`

func scanEmail(row pgx.Row) (Email, error) {
	var e Email
	err := row.Scan(&e.ID, &e.Subject, &e.FromAddress, &e.RawText, &e.RawHTML,
		&e.ReceivedDate, &e.Processed, &e.ListingID)
	return e, err
}

// UnprocessedEmails returns up to limit unprocessed emails, newest first.
func (s *Store) UnprocessedEmails(ctx context.Context, limit int) ([]Email, error) {
	query := `
		SELECT ` + emailColumns + `
		FROM emails
		WHERE processed = false
		ORDER BY received_date DESC
		LIMIT $1`

	rows, err := s.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query unprocessed emails: %w", err)
	}
	defer rows.Close()

	var emails []Email
	for rows.Next() {
		e, err := scanEmail(rows)
		if err != nil {
			return nil, fmt.Errorf("scan email: %w", err)
		}
		emails = append(emails, e)
	}
	return emails, rows.Err()
}

// EmailByID loads a single email.
func (s *Store) EmailByID(ctx context.Context, id uuid.UUID) (Email, error) {
	query := `SELECT ` + emailColumns + ` FROM emails WHERE id = $1`

	e, err := scanEmail(s.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Email{}, fmt.Errorf("email %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Email{}, fmt.Errorf("load email %s: %w", id, err)
	}
	return e, nil
}

// Attachments lists the attachments of an email.
func (s *Store) Attachments(ctx context.Context, emailID uuid.UUID) ([]Attachment, error) {
	query := `
		SELECT id, email_id, COALESCE(filename, ''), COALESCE(content_type, ''),
			COALESCE(storage_path, ''), COALESCE(extracted_text, ''), COALESCE(is_inline, false)
		FROM email_attachments
		WHERE email_id = $1
		ORDER BY filename`

	rows, err := s.db.Query(ctx, query, emailID)
	if err != nil {
		return nil, fmt.Errorf("query attachments: %w", err)
	}
	defer rows.Close()

	var out []Attachment
	for rows.Next() {
		var a Attachment
		if err := rows.Scan(&a.ID, &a.EmailID, &a.Filename, &a.ContentType,
			&a.StoragePath, &a.ExtractedText, &a.IsInline); err != nil {
			return nil, fmt.Errorf("scan attachment: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// SaveExtractedText caches the text of an attachment.
func (s *Store) SaveExtractedText(ctx context.Context, attachmentID uuid.UUID, text string) error {
	_, err := s.db.Exec(ctx, `UPDATE email_attachments SET extracted_text = $2 WHERE id = $1`, attachmentID, text)
	if err != nil {
		return fmt.Errorf("save extracted text: %w", err)
	}
	return nil
}

// FindListingByKey returns the listing whose address shares the deduplication key.
func (s *Store) FindListingByKey(ctx context.Context, key string) (uuid.UUID, bool, error) {
	if key == "" {
		return uuid.Nil, false, nil
	}
	rows, err := s.db.Query(ctx, `SELECT id, COALESCE(full_address, '') FROM copa_listings_new`)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("query listings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id      uuid.UUID
			address string
		)
		if err := rows.Scan(&id, &address); err != nil {
			return uuid.Nil, false, fmt.Errorf("scan listing: %w", err)
		}
		if listing.DedupKey(address) == key {
			return id, true, nil
		}
	}
	return uuid.Nil, false, rows.Err()
}

// InsertListing stores a record through insert_listing_with_encryption, which
// encrypts the details object at rest.
func (s *Store) InsertListing(ctx context.Context, rec listing.Record) (uuid.UUID, error) {
	listingJSON, detailsJSON, err := EncodeListing(rec)
	if err != nil {
		return uuid.Nil, err
	}

	var id uuid.UUID
	err = s.db.QueryRow(ctx,
		`SELECT insert_listing_with_encryption($1::jsonb, $2::jsonb)`,
		string(listingJSON), string(detailsJSON),
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert listing: %w", err)
	}
	return id, nil
}

// EncodeListing splits a record into the listing and details payloads.
func EncodeListing(rec listing.Record) (listingJSON, detailsJSON []byte, err error) {
	listingJSON, err = json.Marshal(rec)
	if err != nil {
		return nil, nil, fmt.Errorf("encode listing: %w", err)
	}
	detailsJSON, err = json.Marshal(rec.Details)
	if err != nil {
		return nil, nil, fmt.Errorf("encode details: %w", err)
	}
	return listingJSON, detailsJSON, nil
}

// MarkProcessed flags an email processed and optionally links it to a listing.
func (s *Store) MarkProcessed(ctx context.Context, emailID uuid.UUID, listingID *uuid.UUID) error {
	query := `
		UPDATE emails SET
			processed = true,
			processed_at = NOW(),
			listing_id = COALESCE($2, listing_id)
		WHERE id = $1`

	tag, err := s.db.Exec(ctx, query, emailID, listingID)
	if err != nil {
		return fmt.Errorf("mark email processed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("email %s: %w", emailID, ErrNotFound)
	}
	return nil
}

// ListListings returns every stored listing, newest first.
func (s *Store) ListListings(ctx context.Context) ([]listing.Stored, error) {
	query := `
		SELECT id, time_sent_tz, COALESCE(full_address, ''), COALESCE(neighborhood, ''),
			asking_price, total_units, residential_units, vacant_residential,
			commercial_units, vacant_commercial, COALESCE(is_vacant_lot, false),
			COALESCE(flagged, false), created_at
		FROM copa_listings_new
		ORDER BY time_sent_tz DESC`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query listings: %w", err)
	}
	defer rows.Close()

	var out []listing.Stored
	for rows.Next() {
		var (
			st listing.Stored
			id uuid.UUID
		)
		if err := rows.Scan(&id, &st.TimeSent, &st.FullAddress, &st.Neighborhood,
			&st.AskingPrice, &st.TotalUnits, &st.ResidentialUnits, &st.VacantResidential,
			&st.CommercialUnits, &st.VacantCommercial, &st.IsVacantLot,
			&st.Flagged, &st.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan listing: %w", err)
		}
		st.ID = id.String()
		out = append(out, st)
	}
	return out, rows.Err()
}

// OldEmailAttachments returns storage paths of attachments on emails received before cutoff.
func (s *Store) OldEmailAttachments(ctx context.Context, before time.Time) ([]string, error) {
	query := `
		SELECT a.storage_path
		FROM email_attachments a
		JOIN emails e ON e.id = a.email_id
		WHERE e.received_date < $1
			AND a.storage_path IS NOT NULL
			AND a.storage_path <> ''`

	rows, err := s.db.Query(ctx, query, before)
	if err != nil {
		return nil, fmt.Errorf("query old attachments: %w", err)
	}
	defer rows.Close()

	paths, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan old attachments: %w", err)
	}
	return paths, nil
}

// DeleteOldEmails runs the database-side retention function.
func (s *Store) DeleteOldEmails(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, `SELECT delete_old_emails()`); err != nil {
		return fmt.Errorf("delete old emails: %w", err)
	}
	return nil
}
