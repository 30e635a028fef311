package repository

import (
	"context"
	"log/slog"

	"rentaldesk/internal/infra"
	"rentaldesk/internal/infra/db"
	"rentaldesk/internal/usecase/shared"

	"github.com/google/uuid"
)

type inventoryRepository struct {
	db     db.DBTX
	logger *slog.Logger
}

func NewInventoryRepository(dbtx db.DBTX) shared.InventoryRepository {
	return &inventoryRepository{db: dbtx, logger: slog.Default()}
}

const findItemQuery = `
SELECT id, name, value_cents, rental_eligible, for_sale, version
FROM items
WHERE id = $1`

func (r *inventoryRepository) ItemByID(ctx context.Context, id uuid.UUID) (*shared.ItemSnapshot, error) {
	return r.scanItem(ctx, findItemQuery, id)
}

func (r *inventoryRepository) ItemByIDForUpdate(ctx context.Context, id uuid.UUID) (*shared.ItemSnapshot, error) {
	return r.scanItem(ctx, findItemQuery+" FOR UPDATE", id)
}

func (r *inventoryRepository) scanItem(ctx context.Context, query string, id uuid.UUID) (*shared.ItemSnapshot, error) {
	var item shared.ItemSnapshot
	err := r.db.QueryRow(ctx, query, id).Scan(
		&item.ID, &item.Name, &item.ValueCents, &item.RentalEligible, &item.ForSale, &item.Version)
	if err != nil {
		return nil, wrapDBErr(r.logger, "failed to find item", err)
	}
	return &item, nil
}

const openRentalsQuery = `
SELECT id, item_id, customer_id, started_at, due_at, daily_rate_cents, returned_at
FROM rentals
WHERE item_id = $1 AND returned_at IS NULL
ORDER BY due_at`

func (r *inventoryRepository) OpenRentalsByItem(ctx context.Context, itemID uuid.UUID) ([]shared.RentalSnapshot, error) {
	rows, err := r.db.Query(ctx, openRentalsQuery, itemID)
	if err != nil {
		return nil, wrapDBErr(r.logger, "failed to find open rentals", err)
	}
	defer rows.Close()

	var rentals []shared.RentalSnapshot
	for rows.Next() {
		var rental shared.RentalSnapshot
		if err := rows.Scan(&rental.ID, &rental.ItemID, &rental.CustomerID,
			&rental.StartedAt, &rental.DueAt, &rental.DailyRateCents, &rental.ReturnedAt); err != nil {
			return nil, wrapDBErr(r.logger, "failed to scan rental", err)
		}
		rentals = append(rentals, rental)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(r.logger, "failed to iterate rentals", err)
	}
	return rentals, nil
}

const openHoldsQuery = `
SELECT id, item_id, reason, opened_at
FROM maintenance_holds
WHERE item_id = $1 AND resolved_at IS NULL
ORDER BY opened_at`

func (r *inventoryRepository) OpenHoldsByItem(ctx context.Context, itemID uuid.UUID) ([]shared.MaintenanceHoldSnapshot, error) {
	rows, err := r.db.Query(ctx, openHoldsQuery, itemID)
	if err != nil {
		return nil, wrapDBErr(r.logger, "failed to find maintenance holds", err)
	}
	defer rows.Close()

	var holds []shared.MaintenanceHoldSnapshot
	for rows.Next() {
		var hold shared.MaintenanceHoldSnapshot
		if err := rows.Scan(&hold.ID, &hold.ItemID, &hold.Reason, &hold.OpenedAt); err != nil {
			return nil, wrapDBErr(r.logger, "failed to scan maintenance hold", err)
		}
		holds = append(holds, hold)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(r.logger, "failed to iterate maintenance holds", err)
	}
	return holds, nil
}

const setItemSaleStateQuery = `
UPDATE items
SET rental_eligible = $2,
    for_sale = $3,
    sale_price_cents = $4,
    version = version + 1,
    updated_at = now()
WHERE id = $1 AND version = $5`

func (r *inventoryRepository) SetItemSaleState(ctx context.Context, itemID uuid.UUID, rentalEligible, forSale bool, salePriceCents *int64, expectedVersion int64) error {
	tag, err := r.db.Exec(ctx, setItemSaleStateQuery,
		itemID, rentalEligible, forSale, salePriceCents, expectedVersion)
	if err != nil {
		return wrapDBErr(r.logger, "failed to update item sale state", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr(r.logger, infra.KindVersionConflict, "item version mismatch", nil)
	}
	return nil
}
