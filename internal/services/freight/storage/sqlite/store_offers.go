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

const offerColumns = `id, shipment_id, forwarder_id, price, message, status, created_at, updated_at`

// CreateOffer inserts one pending offer. The shipment-is-pending precondition
// is checked inside the same transaction as the insert so it cannot be
// invalidated between check and commit.
func (s *Store) CreateOffer(ctx context.Context, offer domain.Offer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(offer.ID) == "" {
		return fmt.Errorf("offer id is required")
	}
	if strings.TrimSpace(offer.ShipmentID) == "" {
		return fmt.Errorf("shipment id is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return mapWriteErr("begin tx", err)
	}
	defer tx.Rollback()

	shipment, err := getShipmentTx(ctx, tx, offer.ShipmentID)
	if err != nil {
		return err
	}
	if shipment.Status != domain.ShipmentStatusPending {
		return domain.ErrShipmentNotPending
	}

	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO offers (id, shipment_id, forwarder_id, price, message, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		offer.ID,
		offer.ShipmentID,
		offer.ForwarderID,
		offer.Price,
		offer.Message,
		string(offer.Status),
		toMillis(offer.CreatedAt),
		toMillis(offer.UpdatedAt),
	); err != nil {
		return mapWriteErr("create offer", err)
	}

	return mapWriteErr("commit create offer", tx.Commit())
}

// GetOffer returns one offer by ID.
func (s *Store) GetOffer(ctx context.Context, id string) (domain.Offer, error) {
	if err := ctx.Err(); err != nil {
		return domain.Offer{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.Offer{}, fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Offer{}, fmt.Errorf("offer id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT `+offerColumns+` FROM offers WHERE id = ?`,
		id,
	)
	offer, err := scanOffer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Offer{}, storage.ErrNotFound
		}
		return domain.Offer{}, fmt.Errorf("get offer: %w", err)
	}
	return offer, nil
}

// ListOffersByShipment returns a shipment's offers ordered by creation time.
// An unknown shipment is storage.ErrNotFound, not an empty list.
func (s *Store) ListOffersByShipment(ctx context.Context, shipmentID string) ([]domain.Offer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	shipmentID = strings.TrimSpace(shipmentID)
	if shipmentID == "" {
		return nil, fmt.Errorf("shipment id is required")
	}

	var found int
	row := s.sqlDB.QueryRowContext(ctx, `SELECT 1 FROM shipments WHERE id = ?`, shipmentID)
	if err := row.Scan(&found); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("list offers by shipment: %w", err)
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT `+offerColumns+`
		   FROM offers
		  WHERE shipment_id = ?
		  ORDER BY created_at ASC, id ASC`,
		shipmentID,
	)
	if err != nil {
		return nil, fmt.Errorf("list offers by shipment: %w", err)
	}
	defer rows.Close()
	return collectOffers(rows)
}

// AcceptOffer resolves one offer acceptance atomically: the offer's status is
// compare-and-swapped from pending, all pending siblings are rejected, and the
// shipment moves to accepted. The first transaction to commit wins; the loser
// observes domain.ErrOfferNotPending.
func (s *Store) AcceptOffer(ctx context.Context, offerID string, now time.Time) (storage.AcceptOfferResult, error) {
	if err := ctx.Err(); err != nil {
		return storage.AcceptOfferResult{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.AcceptOfferResult{}, fmt.Errorf("storage is not configured")
	}
	offerID = strings.TrimSpace(offerID)
	if offerID == "" {
		return storage.AcceptOfferResult{}, fmt.Errorf("offer id is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return storage.AcceptOfferResult{}, mapWriteErr("begin tx", err)
	}
	defer tx.Rollback()

	offer, err := getOfferTx(ctx, tx, offerID)
	if err != nil {
		return storage.AcceptOfferResult{}, err
	}
	if offer.Status != domain.OfferStatusPending {
		return storage.AcceptOfferResult{}, domain.ErrOfferNotPending
	}

	nowMillis := toMillis(now)

	res, err := tx.ExecContext(
		ctx,
		`UPDATE offers SET status = ?, updated_at = ?
		  WHERE id = ? AND status = ?`,
		string(domain.OfferStatusAccepted),
		nowMillis,
		offerID,
		string(domain.OfferStatusPending),
	)
	if err != nil {
		return storage.AcceptOfferResult{}, mapWriteErr("accept offer", err)
	}
	if affected, err := res.RowsAffected(); err != nil {
		return storage.AcceptOfferResult{}, fmt.Errorf("accept offer: %w", err)
	} else if affected == 0 {
		return storage.AcceptOfferResult{}, domain.ErrOfferNotPending
	}

	rejected, err := collectOffersTx(ctx, tx,
		`SELECT `+offerColumns+`
		   FROM offers
		  WHERE shipment_id = ? AND id <> ? AND status = ?
		  ORDER BY created_at ASC, id ASC`,
		offer.ShipmentID, offerID, string(domain.OfferStatusPending),
	)
	if err != nil {
		return storage.AcceptOfferResult{}, err
	}

	if _, err := tx.ExecContext(
		ctx,
		`UPDATE offers SET status = ?, updated_at = ?
		  WHERE shipment_id = ? AND id <> ? AND status = ?`,
		string(domain.OfferStatusRejected),
		nowMillis,
		offer.ShipmentID,
		offerID,
		string(domain.OfferStatusPending),
	); err != nil {
		return storage.AcceptOfferResult{}, mapWriteErr("reject sibling offers", err)
	}

	res, err = tx.ExecContext(
		ctx,
		`UPDATE shipments SET status = ?, updated_at = ?
		  WHERE id = ? AND status = ?`,
		string(domain.ShipmentStatusAccepted),
		nowMillis,
		offer.ShipmentID,
		string(domain.ShipmentStatusPending),
	)
	if err != nil {
		return storage.AcceptOfferResult{}, mapWriteErr("accept shipment", err)
	}
	if affected, err := res.RowsAffected(); err != nil {
		return storage.AcceptOfferResult{}, fmt.Errorf("accept shipment: %w", err)
	} else if affected == 0 {
		return storage.AcceptOfferResult{}, domain.ErrShipmentNotPending
	}

	shipment, err := getShipmentTx(ctx, tx, offer.ShipmentID)
	if err != nil {
		return storage.AcceptOfferResult{}, err
	}

	if err := tx.Commit(); err != nil {
		return storage.AcceptOfferResult{}, mapWriteErr("commit accept offer", err)
	}

	offer.Status = domain.OfferStatusAccepted
	offer.UpdatedAt = now.UTC()
	for i := range rejected {
		rejected[i].Status = domain.OfferStatusRejected
		rejected[i].UpdatedAt = now.UTC()
	}
	return storage.AcceptOfferResult{
		Accepted: offer,
		Rejected: rejected,
		Shipment: shipment,
	}, nil
}

func scanOffer(row rowScanner) (domain.Offer, error) {
	var offer domain.Offer
	var status string
	var createdAt, updatedAt int64
	err := row.Scan(
		&offer.ID,
		&offer.ShipmentID,
		&offer.ForwarderID,
		&offer.Price,
		&offer.Message,
		&status,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return domain.Offer{}, err
	}
	offer.Status = domain.OfferStatus(status)
	offer.CreatedAt = fromMillis(createdAt)
	offer.UpdatedAt = fromMillis(updatedAt)
	return offer, nil
}

func collectOffers(rows *sql.Rows) ([]domain.Offer, error) {
	var offers []domain.Offer
	for rows.Next() {
		offer, err := scanOffer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan offer: %w", err)
		}
		offers = append(offers, offer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate offers: %w", err)
	}
	return offers, nil
}

func collectOffersTx(ctx context.Context, tx *sql.Tx, query string, args ...any) ([]domain.Offer, error) {
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapWriteErr("query offers", err)
	}
	defer rows.Close()
	return collectOffers(rows)
}

func getOfferTx(ctx context.Context, tx *sql.Tx, id string) (domain.Offer, error) {
	row := tx.QueryRowContext(
		ctx,
		`SELECT `+offerColumns+` FROM offers WHERE id = ?`,
		id,
	)
	offer, err := scanOffer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Offer{}, storage.ErrNotFound
		}
		return domain.Offer{}, mapWriteErr("get offer", err)
	}
	return offer, nil
}
