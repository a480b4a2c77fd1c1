package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/EmreGurenekli/yolnext/internal/services/freight/domain"
	"github.com/EmreGurenekli/yolnext/internal/services/freight/storage"
)

const listingColumns = `id, shipment_id, forwarder_id, min_price, notes, status, created_at, updated_at`

// CreateListing inserts one open listing. The preconditions (shipment
// accepted, forwarder holds the accepted offer, no other open listing) are
// checked in the insert transaction; the partial unique index backstops the
// last one.
func (s *Store) CreateListing(ctx context.Context, listing domain.Listing) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(listing.ID) == "" {
		return fmt.Errorf("listing id is required")
	}
	if strings.TrimSpace(listing.ShipmentID) == "" {
		return fmt.Errorf("shipment id is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return mapWriteErr("begin tx", err)
	}
	defer tx.Rollback()

	shipment, err := getShipmentTx(ctx, tx, listing.ShipmentID)
	if err != nil {
		return err
	}
	if shipment.Status != domain.ShipmentStatusAccepted {
		return domain.ErrShipmentNotAccepted
	}

	var acceptedForwarder string
	err = tx.QueryRowContext(
		ctx,
		`SELECT forwarder_id FROM offers WHERE shipment_id = ? AND status = ?`,
		listing.ShipmentID,
		string(domain.OfferStatusAccepted),
	).Scan(&acceptedForwarder)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrShipmentNotAccepted
		}
		return mapWriteErr("load accepted offer", err)
	}
	if acceptedForwarder != listing.ForwarderID {
		return domain.ErrListingForwarderMismatch
	}

	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO listings (id, shipment_id, forwarder_id, min_price, notes, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		listing.ID,
		listing.ShipmentID,
		listing.ForwarderID,
		listing.MinPrice,
		listing.Notes,
		string(listing.Status),
		toMillis(listing.CreatedAt),
		toMillis(listing.UpdatedAt),
	); err != nil {
		if isUniqueViolation(err, "listings") {
			return domain.ErrListingAlreadyOpen
		}
		return mapWriteErr("create listing", err)
	}

	return mapWriteErr("commit create listing", tx.Commit())
}

// GetListing returns one listing by ID.
func (s *Store) GetListing(ctx context.Context, id string) (domain.Listing, error) {
	if err := ctx.Err(); err != nil {
		return domain.Listing{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.Listing{}, fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Listing{}, fmt.Errorf("listing id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT `+listingColumns+` FROM listings WHERE id = ?`,
		id,
	)
	listing, err := scanListing(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Listing{}, storage.ErrNotFound
		}
		return domain.Listing{}, fmt.Errorf("get listing: %w", err)
	}
	return listing, nil
}

// ListListingsByForwarder returns a forwarder's listings ordered by creation time.
func (s *Store) ListListingsByForwarder(ctx context.Context, forwarderID string) ([]domain.Listing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	forwarderID = strings.TrimSpace(forwarderID)
	if forwarderID == "" {
		return nil, fmt.Errorf("forwarder id is required")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT `+listingColumns+`
		   FROM listings
		  WHERE forwarder_id = ?
		  ORDER BY created_at ASC, id ASC`,
		forwarderID,
	)
	if err != nil {
		return nil, fmt.Errorf("list listings by forwarder: %w", err)
	}
	defer rows.Close()

	var listings []domain.Listing
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("scan listing: %w", err)
		}
		listings = append(listings, listing)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate listings: %w", err)
	}
	return listings, nil
}

// CancelListing closes an open listing without assignment.
func (s *Store) CancelListing(ctx context.Context, id string, now time.Time) (domain.Listing, error) {
	if err := ctx.Err(); err != nil {
		return domain.Listing{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.Listing{}, fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Listing{}, fmt.Errorf("listing id is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Listing{}, mapWriteErr("begin tx", err)
	}
	defer tx.Rollback()

	listing, err := getListingTx(ctx, tx, id)
	if err != nil {
		return domain.Listing{}, err
	}
	if listing.Status != domain.ListingStatusOpen {
		return domain.Listing{}, domain.ErrListingNotOpen
	}

	res, err := tx.ExecContext(
		ctx,
		`UPDATE listings SET status = ?, updated_at = ?
		  WHERE id = ? AND status = ?`,
		string(domain.ListingStatusCancelled),
		toMillis(now),
		id,
		string(domain.ListingStatusOpen),
	)
	if err != nil {
		return domain.Listing{}, mapWriteErr("cancel listing", err)
	}
	if affected, err := res.RowsAffected(); err != nil {
		return domain.Listing{}, fmt.Errorf("cancel listing: %w", err)
	} else if affected == 0 {
		return domain.Listing{}, domain.ErrListingNotOpen
	}

	if err := tx.Commit(); err != nil {
		return domain.Listing{}, mapWriteErr("commit cancel listing", err)
	}

	listing.Status = domain.ListingStatusCancelled
	listing.UpdatedAt = now.UTC()
	return listing, nil
}

func scanListing(row rowScanner) (domain.Listing, error) {
	var listing domain.Listing
	var status string
	var createdAt, updatedAt int64
	err := row.Scan(
		&listing.ID,
		&listing.ShipmentID,
		&listing.ForwarderID,
		&listing.MinPrice,
		&listing.Notes,
		&status,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return domain.Listing{}, err
	}
	listing.Status = domain.ListingStatus(status)
	listing.CreatedAt = fromMillis(createdAt)
	listing.UpdatedAt = fromMillis(updatedAt)
	return listing, nil
}

func getListingTx(ctx context.Context, tx *sql.Tx, id string) (domain.Listing, error) {
	row := tx.QueryRowContext(
		ctx,
		`SELECT `+listingColumns+` FROM listings WHERE id = ?`,
		id,
	)
	listing, err := scanListing(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Listing{}, storage.ErrNotFound
		}
		return domain.Listing{}, mapWriteErr("get listing", err)
	}
	return listing, nil
}
