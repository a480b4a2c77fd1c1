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

const bidColumns = `id, listing_id, carrier_id, price, eta_hours, note, status, created_at, updated_at`

// CreateBid inserts one pending bid. The listing-is-open precondition is
// checked inside the same transaction as the insert.
func (s *Store) CreateBid(ctx context.Context, bid domain.Bid) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(bid.ID) == "" {
		return fmt.Errorf("bid id is required")
	}
	if strings.TrimSpace(bid.ListingID) == "" {
		return fmt.Errorf("listing id is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return mapWriteErr("begin tx", err)
	}
	defer tx.Rollback()

	listing, err := getListingTx(ctx, tx, bid.ListingID)
	if err != nil {
		return err
	}
	if listing.Status != domain.ListingStatusOpen {
		return domain.ErrListingNotOpen
	}

	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO bids (id, listing_id, carrier_id, price, eta_hours, note, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		bid.ID,
		bid.ListingID,
		bid.CarrierID,
		bid.Price,
		bid.EtaHours,
		bid.Note,
		string(bid.Status),
		toMillis(bid.CreatedAt),
		toMillis(bid.UpdatedAt),
	); err != nil {
		return mapWriteErr("create bid", err)
	}

	return mapWriteErr("commit create bid", tx.Commit())
}

// GetBid returns one bid by ID.
func (s *Store) GetBid(ctx context.Context, id string) (domain.Bid, error) {
	if err := ctx.Err(); err != nil {
		return domain.Bid{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.Bid{}, fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Bid{}, fmt.Errorf("bid id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT `+bidColumns+` FROM bids WHERE id = ?`,
		id,
	)
	bid, err := scanBid(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Bid{}, storage.ErrNotFound
		}
		return domain.Bid{}, fmt.Errorf("get bid: %w", err)
	}
	return bid, nil
}

// ListBidsByListing returns a listing's bids ordered by creation time.
// An unknown listing is storage.ErrNotFound, not an empty list.
func (s *Store) ListBidsByListing(ctx context.Context, listingID string) ([]domain.Bid, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	listingID = strings.TrimSpace(listingID)
	if listingID == "" {
		return nil, fmt.Errorf("listing id is required")
	}

	var found int
	row := s.sqlDB.QueryRowContext(ctx, `SELECT 1 FROM listings WHERE id = ?`, listingID)
	if err := row.Scan(&found); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("list bids by listing: %w", err)
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT `+bidColumns+`
		   FROM bids
		  WHERE listing_id = ?
		  ORDER BY created_at ASC, id ASC`,
		listingID,
	)
	if err != nil {
		return nil, fmt.Errorf("list bids by listing: %w", err)
	}
	defer rows.Close()
	return collectBids(rows)
}

// AcceptBid resolves one bid acceptance atomically: the bid CAS from pending,
// sibling rejection, listing assignment, shipment carrier assignment, and the
// commission entry all land in one transaction. Write order is fixed (bid,
// siblings, listing, shipment, commission) so the accept-offer path and the
// accept-bid path never take row locks in opposite order.
func (s *Store) AcceptBid(ctx context.Context, bidID string, now time.Time) (storage.AcceptBidResult, error) {
	if err := ctx.Err(); err != nil {
		return storage.AcceptBidResult{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.AcceptBidResult{}, fmt.Errorf("storage is not configured")
	}
	bidID = strings.TrimSpace(bidID)
	if bidID == "" {
		return storage.AcceptBidResult{}, fmt.Errorf("bid id is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return storage.AcceptBidResult{}, mapWriteErr("begin tx", err)
	}
	defer tx.Rollback()

	bid, err := getBidTx(ctx, tx, bidID)
	if err != nil {
		return storage.AcceptBidResult{}, err
	}
	if bid.Status != domain.BidStatusPending {
		return storage.AcceptBidResult{}, domain.ErrBidNotPending
	}

	listing, err := getListingTx(ctx, tx, bid.ListingID)
	if err != nil {
		return storage.AcceptBidResult{}, err
	}
	if listing.Status != domain.ListingStatusOpen {
		return storage.AcceptBidResult{}, domain.ErrListingNotOpen
	}

	nowMillis := toMillis(now)

	res, err := tx.ExecContext(
		ctx,
		`UPDATE bids SET status = ?, updated_at = ?
		  WHERE id = ? AND status = ?`,
		string(domain.BidStatusAccepted),
		nowMillis,
		bidID,
		string(domain.BidStatusPending),
	)
	if err != nil {
		return storage.AcceptBidResult{}, mapWriteErr("accept bid", err)
	}
	if affected, err := res.RowsAffected(); err != nil {
		return storage.AcceptBidResult{}, fmt.Errorf("accept bid: %w", err)
	} else if affected == 0 {
		return storage.AcceptBidResult{}, domain.ErrBidNotPending
	}

	rejected, err := collectBidsTx(ctx, tx,
		`SELECT `+bidColumns+`
		   FROM bids
		  WHERE listing_id = ? AND id <> ? AND status = ?
		  ORDER BY created_at ASC, id ASC`,
		bid.ListingID, bidID, string(domain.BidStatusPending),
	)
	if err != nil {
		return storage.AcceptBidResult{}, err
	}

	if _, err := tx.ExecContext(
		ctx,
		`UPDATE bids SET status = ?, updated_at = ?
		  WHERE listing_id = ? AND id <> ? AND status = ?`,
		string(domain.BidStatusRejected),
		nowMillis,
		bid.ListingID,
		bidID,
		string(domain.BidStatusPending),
	); err != nil {
		return storage.AcceptBidResult{}, mapWriteErr("reject sibling bids", err)
	}

	res, err = tx.ExecContext(
		ctx,
		`UPDATE listings SET status = ?, updated_at = ?
		  WHERE id = ? AND status = ?`,
		string(domain.ListingStatusAssigned),
		nowMillis,
		bid.ListingID,
		string(domain.ListingStatusOpen),
	)
	if err != nil {
		return storage.AcceptBidResult{}, mapWriteErr("assign listing", err)
	}
	if affected, err := res.RowsAffected(); err != nil {
		return storage.AcceptBidResult{}, fmt.Errorf("assign listing: %w", err)
	} else if affected == 0 {
		return storage.AcceptBidResult{}, domain.ErrListingNotOpen
	}

	shipment, err := getShipmentTx(ctx, tx, listing.ShipmentID)
	if err != nil {
		return storage.AcceptBidResult{}, err
	}
	if shipment.Status != domain.ShipmentStatusAccepted {
		return storage.AcceptBidResult{}, domain.ErrShipmentNotAssignable
	}

	res, err = tx.ExecContext(
		ctx,
		`UPDATE shipments SET status = ?, assigned_carrier_id = ?, updated_at = ?
		  WHERE id = ? AND status = ?`,
		string(domain.ShipmentStatusCarrierAssigned),
		bid.CarrierID,
		nowMillis,
		listing.ShipmentID,
		string(domain.ShipmentStatusAccepted),
	)
	if err != nil {
		return storage.AcceptBidResult{}, mapWriteErr("assign carrier", err)
	}
	if affected, err := res.RowsAffected(); err != nil {
		return storage.AcceptBidResult{}, fmt.Errorf("assign carrier: %w", err)
	} else if affected == 0 {
		return storage.AcceptBidResult{}, domain.ErrShipmentNotAssignable
	}

	var offerPrice float64
	err = tx.QueryRowContext(
		ctx,
		`SELECT price FROM offers WHERE shipment_id = ? AND status = ?`,
		listing.ShipmentID,
		string(domain.OfferStatusAccepted),
	).Scan(&offerPrice)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.AcceptBidResult{}, domain.ErrShipmentNotAssignable
		}
		return storage.AcceptBidResult{}, mapWriteErr("load accepted offer price", err)
	}

	commission := domain.Commission{
		ID:          commissionID(bid.ID),
		ShipmentID:  listing.ShipmentID,
		ListingID:   listing.ID,
		ForwarderID: listing.ForwarderID,
		CarrierID:   bid.CarrierID,
		OfferPrice:  offerPrice,
		BidPrice:    bid.Price,
		Margin:      offerPrice - bid.Price,
		CreatedAt:   now.UTC(),
	}
	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO commissions (id, shipment_id, listing_id, forwarder_id, carrier_id, offer_price, bid_price, margin, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		commission.ID,
		commission.ShipmentID,
		commission.ListingID,
		commission.ForwarderID,
		commission.CarrierID,
		commission.OfferPrice,
		commission.BidPrice,
		commission.Margin,
		nowMillis,
	); err != nil {
		return storage.AcceptBidResult{}, mapWriteErr("record commission", err)
	}

	if err := tx.Commit(); err != nil {
		return storage.AcceptBidResult{}, mapWriteErr("commit accept bid", err)
	}

	bid.Status = domain.BidStatusAccepted
	bid.UpdatedAt = now.UTC()
	for i := range rejected {
		rejected[i].Status = domain.BidStatusRejected
		rejected[i].UpdatedAt = now.UTC()
	}
	listing.Status = domain.ListingStatusAssigned
	listing.UpdatedAt = now.UTC()
	shipment.Status = domain.ShipmentStatusCarrierAssigned
	shipment.AssignedCarrierID = bid.CarrierID
	shipment.UpdatedAt = now.UTC()

	return storage.AcceptBidResult{
		Accepted:   bid,
		Rejected:   rejected,
		Listing:    listing,
		Shipment:   shipment,
		Commission: commission,
	}, nil
}

// commissionID derives the commission identifier from the winning bid;
// there is at most one commission per bid.
func commissionID(bidID string) string {
	return "com-" + bidID
}

func scanBid(row rowScanner) (domain.Bid, error) {
	var bid domain.Bid
	var status string
	var createdAt, updatedAt int64
	err := row.Scan(
		&bid.ID,
		&bid.ListingID,
		&bid.CarrierID,
		&bid.Price,
		&bid.EtaHours,
		&bid.Note,
		&status,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return domain.Bid{}, err
	}
	bid.Status = domain.BidStatus(status)
	bid.CreatedAt = fromMillis(createdAt)
	bid.UpdatedAt = fromMillis(updatedAt)
	return bid, nil
}

func collectBids(rows *sql.Rows) ([]domain.Bid, error) {
	var bids []domain.Bid
	for rows.Next() {
		bid, err := scanBid(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bid: %w", err)
		}
		bids = append(bids, bid)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bids: %w", err)
	}
	return bids, nil
}

func collectBidsTx(ctx context.Context, tx *sql.Tx, query string, args ...any) ([]domain.Bid, error) {
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapWriteErr("query bids", err)
	}
	defer rows.Close()
	return collectBids(rows)
}

func getBidTx(ctx context.Context, tx *sql.Tx, id string) (domain.Bid, error) {
	row := tx.QueryRowContext(
		ctx,
		`SELECT `+bidColumns+` FROM bids WHERE id = ?`,
		id,
	)
	bid, err := scanBid(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Bid{}, storage.ErrNotFound
		}
		return domain.Bid{}, mapWriteErr("get bid", err)
	}
	return bid, nil
}
