package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/EmreGurenekli/yolnext/internal/services/freight/domain"
)

const commissionColumns = `id, shipment_id, listing_id, forwarder_id, carrier_id, offer_price, bid_price, margin, created_at`

// ListCommissionsByForwarder returns a forwarder's commission entries ordered
// by creation time.
func (s *Store) ListCommissionsByForwarder(ctx context.Context, forwarderID string) ([]domain.Commission, error) {
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
		`SELECT `+commissionColumns+`
		   FROM commissions
		  WHERE forwarder_id = ?
		  ORDER BY created_at ASC, id ASC`,
		forwarderID,
	)
	if err != nil {
		return nil, fmt.Errorf("list commissions by forwarder: %w", err)
	}
	defer rows.Close()

	var commissions []domain.Commission
	for rows.Next() {
		commission, err := scanCommission(rows)
		if err != nil {
			return nil, fmt.Errorf("scan commission: %w", err)
		}
		commissions = append(commissions, commission)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate commissions: %w", err)
	}
	return commissions, nil
}

func scanCommission(row rowScanner) (domain.Commission, error) {
	var commission domain.Commission
	var createdAt int64
	err := row.Scan(
		&commission.ID,
		&commission.ShipmentID,
		&commission.ListingID,
		&commission.ForwarderID,
		&commission.CarrierID,
		&commission.OfferPrice,
		&commission.BidPrice,
		&commission.Margin,
		&createdAt,
	)
	if err != nil {
		return domain.Commission{}, err
	}
	commission.CreatedAt = fromMillis(createdAt)
	return commission, nil
}
