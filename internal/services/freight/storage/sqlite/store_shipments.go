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

const shipmentColumns = `id, owner_id, owner_role,
	       origin_city, origin_address,
	       destination_city, destination_address,
	       cargo_description, cargo_weight_kg, cargo_volume_m3,
	       requested_price, status, assigned_carrier_id,
	       created_at, updated_at`

// CreateShipment inserts one pending shipment record.
func (s *Store) CreateShipment(ctx context.Context, shipment domain.Shipment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(shipment.ID) == "" {
		return fmt.Errorf("shipment id is required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO shipments (
		   id, owner_id, owner_role,
		   origin_city, origin_address,
		   destination_city, destination_address,
		   cargo_description, cargo_weight_kg, cargo_volume_m3,
		   requested_price, status, assigned_carrier_id,
		   created_at, updated_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		shipment.ID,
		shipment.OwnerID,
		string(shipment.OwnerRole),
		shipment.Origin.City,
		shipment.Origin.Address,
		shipment.Destination.City,
		shipment.Destination.Address,
		shipment.Cargo.Description,
		shipment.Cargo.WeightKg,
		shipment.Cargo.VolumeM3,
		shipment.RequestedPrice,
		string(shipment.Status),
		shipment.AssignedCarrierID,
		toMillis(shipment.CreatedAt),
		toMillis(shipment.UpdatedAt),
	)
	return mapWriteErr("create shipment", err)
}

// GetShipment returns one shipment by ID.
func (s *Store) GetShipment(ctx context.Context, id string) (domain.Shipment, error) {
	if err := ctx.Err(); err != nil {
		return domain.Shipment{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.Shipment{}, fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Shipment{}, fmt.Errorf("shipment id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT `+shipmentColumns+` FROM shipments WHERE id = ?`,
		id,
	)
	shipment, err := scanShipment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Shipment{}, storage.ErrNotFound
		}
		return domain.Shipment{}, fmt.Errorf("get shipment: %w", err)
	}
	return shipment, nil
}

// SetShipmentStatus applies one lifecycle transition inside a transaction.
func (s *Store) SetShipmentStatus(ctx context.Context, id string, status domain.ShipmentStatus, now time.Time) (domain.Shipment, error) {
	if err := ctx.Err(); err != nil {
		return domain.Shipment{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.Shipment{}, fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Shipment{}, fmt.Errorf("shipment id is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Shipment{}, mapWriteErr("begin tx", err)
	}
	defer tx.Rollback()

	current, err := getShipmentTx(ctx, tx, id)
	if err != nil {
		return domain.Shipment{}, err
	}
	if !domain.IsShipmentTransitionAllowed(current.Status, status) {
		return domain.Shipment{}, domain.InvalidTransitionError(current.Status, status)
	}

	res, err := tx.ExecContext(
		ctx,
		`UPDATE shipments SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		string(status),
		toMillis(now),
		id,
		string(current.Status),
	)
	if err != nil {
		return domain.Shipment{}, mapWriteErr("set shipment status", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Shipment{}, fmt.Errorf("set shipment status: %w", err)
	}
	if affected == 0 {
		// The row moved under us between read and write.
		return domain.Shipment{}, storage.ErrContention
	}

	if err := tx.Commit(); err != nil {
		return domain.Shipment{}, mapWriteErr("commit set shipment status", err)
	}

	current.Status = status
	current.UpdatedAt = now.UTC()
	return current, nil
}

// ListShipmentsByOwner returns an owner's shipments ordered by creation time.
func (s *Store) ListShipmentsByOwner(ctx context.Context, ownerID string) ([]domain.Shipment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, fmt.Errorf("owner id is required")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT `+shipmentColumns+`
		   FROM shipments
		  WHERE owner_id = ?
		  ORDER BY created_at ASC, id ASC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list shipments by owner: %w", err)
	}
	defer rows.Close()
	return collectShipments(rows)
}

// ListActiveShipmentsByCarrier returns carrier-assigned, non-terminal shipments.
func (s *Store) ListActiveShipmentsByCarrier(ctx context.Context, carrierID string) ([]domain.Shipment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	carrierID = strings.TrimSpace(carrierID)
	if carrierID == "" {
		return nil, fmt.Errorf("carrier id is required")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT `+shipmentColumns+`
		   FROM shipments
		  WHERE assigned_carrier_id = ?
		    AND status NOT IN (?, ?)
		  ORDER BY created_at ASC, id ASC`,
		carrierID,
		string(domain.ShipmentStatusCompleted),
		string(domain.ShipmentStatusCancelled),
	)
	if err != nil {
		return nil, fmt.Errorf("list active shipments by carrier: %w", err)
	}
	defer rows.Close()
	return collectShipments(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanShipment(row rowScanner) (domain.Shipment, error) {
	var shipment domain.Shipment
	var ownerRole, status string
	var createdAt, updatedAt int64
	err := row.Scan(
		&shipment.ID,
		&shipment.OwnerID,
		&ownerRole,
		&shipment.Origin.City,
		&shipment.Origin.Address,
		&shipment.Destination.City,
		&shipment.Destination.Address,
		&shipment.Cargo.Description,
		&shipment.Cargo.WeightKg,
		&shipment.Cargo.VolumeM3,
		&shipment.RequestedPrice,
		&status,
		&shipment.AssignedCarrierID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return domain.Shipment{}, err
	}
	shipment.OwnerRole = domain.OwnerRole(ownerRole)
	shipment.Status = domain.ShipmentStatus(status)
	shipment.CreatedAt = fromMillis(createdAt)
	shipment.UpdatedAt = fromMillis(updatedAt)
	return shipment, nil
}

func collectShipments(rows *sql.Rows) ([]domain.Shipment, error) {
	var shipments []domain.Shipment
	for rows.Next() {
		shipment, err := scanShipment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan shipment: %w", err)
		}
		shipments = append(shipments, shipment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate shipments: %w", err)
	}
	return shipments, nil
}

func getShipmentTx(ctx context.Context, tx *sql.Tx, id string) (domain.Shipment, error) {
	row := tx.QueryRowContext(
		ctx,
		`SELECT `+shipmentColumns+` FROM shipments WHERE id = ?`,
		id,
	)
	shipment, err := scanShipment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Shipment{}, storage.ErrNotFound
		}
		return domain.Shipment{}, mapWriteErr("get shipment", err)
	}
	return shipment, nil
}
