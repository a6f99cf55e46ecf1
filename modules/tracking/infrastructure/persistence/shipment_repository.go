package persistence

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/hexinli/JakartaBackend/modules/tracking/domain/entities/shipment"
	"github.com/hexinli/JakartaBackend/modules/tracking/infrastructure/persistence/models"
	"github.com/hexinli/JakartaBackend/modules/tracking/sheet"
	"github.com/hexinli/JakartaBackend/pkg/composables"
	"github.com/hexinli/JakartaBackend/pkg/repo"
)

// businessColumns are the diff-gated upsert columns, in insert order after
// shipment_no. Audit columns (created_at/updated_at) and the primary key never
// participate in the diff.
var businessColumns = []string{
	"order_name",
	"shipment_status",
	"status_delivery",
	"source_location",
	"destination_location",
	"service_provider",
	"insert_time",
	"ata",
	"atd",
	"plan_mos_date",
	"global_pod_cycle_statistic",
	"period",
	"pm_location",
	"last_status",
	"remark",
	"is_deleted",
	"sheet_title",
	"sheet_row",
	"sheet_cell",
}

const shipmentSelectColumns = `id, shipment_no, order_name, shipment_status, status_delivery,
	source_location, destination_location, service_provider, insert_time, ata, atd,
	plan_mos_date, global_pod_cycle_statistic, period, pm_location, last_status, remark,
	is_deleted, sheet_title, sheet_row, sheet_cell, created_at, updated_at`

// upsertChunkSize keeps each statement well under the wire-protocol parameter
// limit (20 columns per row).
const upsertChunkSize = 500

type ShipmentRepository struct{}

func NewShipmentRepository() shipment.Repository {
	return &ShipmentRepository{}
}

func scanShipment(row pgx.Row) (*models.Shipment, error) {
	var m models.Shipment
	if err := row.Scan(
		&m.ID, &m.ShipmentNo, &m.OrderName, &m.ShipmentStatus, &m.StatusDelivery,
		&m.SourceLocation, &m.DestinationLocation, &m.ServiceProvider, &m.InsertTime,
		&m.ATA, &m.ATD, &m.PlanMOSDate, &m.GlobalPODCycle, &m.Period, &m.PMLocation,
		&m.LastStatus, &m.Remark, &m.IsDeleted, &m.SheetTitle, &m.SheetRow, &m.SheetCell,
		&m.CreatedAt, &m.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *ShipmentRepository) GetByNumber(ctx context.Context, shipmentNo string) (*shipment.Shipment, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	m, err := scanShipment(tx.QueryRow(ctx, `
		SELECT `+shipmentSelectColumns+`
		FROM shipments
		WHERE shipment_no = $1
	`, shipmentNo))
	if err == pgx.ErrNoRows {
		return nil, shipment.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return toDomainShipment(m), nil
}

func (r *ShipmentRepository) FindByOrderName(ctx context.Context, orderName string) ([]*shipment.Shipment, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT `+shipmentSelectColumns+`
		FROM shipments
		WHERE LOWER(TRIM(order_name)) = LOWER(TRIM($1)) AND NOT is_deleted
		ORDER BY id
	`, orderName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*shipment.Shipment
	for rows.Next() {
		m, err := scanShipment(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, toDomainShipment(m))
	}
	return results, rows.Err()
}

func (r *ShipmentRepository) ExistingKeys(ctx context.Context) ([]shipment.KeyState, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `SELECT shipment_no, is_deleted FROM shipments`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []shipment.KeyState
	for rows.Next() {
		var k shipment.KeyState
		if err := rows.Scan(&k.ShipmentNo, &k.IsDeleted); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func (r *ShipmentRepository) BulkUpsert(ctx context.Context, incoming []*shipment.Shipment) error {
	if len(incoming) == 0 {
		return nil
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	for start := 0; start < len(incoming); start += upsertChunkSize {
		end := start + upsertChunkSize
		if end > len(incoming) {
			end = len(incoming)
		}
		if err := upsertChunk(ctx, tx, incoming[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func upsertChunk(ctx context.Context, tx repo.Tx, rows []*shipment.Shipment) error {
	colCount := len(businessColumns) + 1
	valueTuples := make([]string, 0, len(rows))
	args := make([]interface{}, 0, len(rows)*colCount)

	for i, s := range rows {
		placeholders := make([]string, colCount)
		for j := 0; j < colCount; j++ {
			placeholders[j] = fmt.Sprintf("$%d", i*colCount+j+1)
		}
		valueTuples = append(valueTuples, "("+strings.Join(placeholders, ", ")+")")
		args = append(args, s.ShipmentNo)
		args = append(args, businessValues(s)...)
	}

	setClauses := make([]string, 0, len(businessColumns)+1)
	currentTuple := make([]string, 0, len(businessColumns))
	excludedTuple := make([]string, 0, len(businessColumns))
	for _, col := range businessColumns {
		setClauses = append(setClauses, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
		currentTuple = append(currentTuple, "shipments."+col)
		excludedTuple = append(excludedTuple, "EXCLUDED."+col)
	}
	setClauses = append(setClauses, "updated_at = NOW()")

	// The WHERE clause diff-gates the update: byte-identical rows are left
	// untouched so updated_at only advances on real change.
	query := `
		INSERT INTO shipments (shipment_no, ` + strings.Join(businessColumns, ", ") + `)
		VALUES ` + strings.Join(valueTuples, ", ") + `
		ON CONFLICT (shipment_no) DO UPDATE SET ` + strings.Join(setClauses, ", ") + `
		WHERE (` + strings.Join(currentTuple, ", ") + `)
		IS DISTINCT FROM (` + strings.Join(excludedTuple, ", ") + `)
	`
	_, err := tx.Exec(ctx, query, args...)
	return err
}

func (r *ShipmentRepository) SoftDeleteMissing(ctx context.Context, seen []string) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE shipments
		SET is_deleted = TRUE, updated_at = NOW()
		WHERE NOT is_deleted AND NOT (shipment_no = ANY($1))
	`, seen)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *ShipmentRepository) Create(ctx context.Context, s *shipment.Shipment) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	args := make([]interface{}, 0, len(businessColumns)+1)
	args = append(args, s.ShipmentNo)
	args = append(args, businessValues(s)...)

	placeholders := make([]string, len(args))
	for i := range args {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	return tx.QueryRow(ctx, `
		INSERT INTO shipments (shipment_no, `+strings.Join(businessColumns, ", ")+`)
		VALUES (`+strings.Join(placeholders, ", ")+`)
		RETURNING id, created_at, updated_at
	`, args...).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

func (r *ShipmentRepository) UpdateFields(ctx context.Context, shipmentNo string, updates map[sheet.Field]*string) error {
	if len(updates) == 0 {
		return nil
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	set := make([]string, 0, len(updates)+1)
	args := []interface{}{shipmentNo}
	argPos := 2
	for _, f := range sheet.MappedFields {
		if f == sheet.FieldShipmentNo {
			continue
		}
		value, ok := updates[f]
		if !ok {
			continue
		}
		set = append(set, fmt.Sprintf("%s = $%d", string(f), argPos))
		args = append(args, value)
		argPos++
	}
	if len(set) == 0 {
		return nil
	}
	set = append(set, "updated_at = NOW()")

	tag, err := tx.Exec(ctx, `
		UPDATE shipments SET `+strings.Join(set, ", ")+`
		WHERE shipment_no = $1
	`, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shipment.ErrNotFound
	}
	return nil
}

func (r *ShipmentRepository) UpdatePosition(ctx context.Context, shipmentNo string, pos shipment.Position) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE shipments
		SET sheet_title = $2, sheet_row = $3, sheet_cell = $4, updated_at = NOW()
		WHERE shipment_no = $1
	`, shipmentNo, pos.SheetTitle, pos.SheetRow, pos.SheetCell)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shipment.ErrNotFound
	}
	return nil
}

// businessValues returns a shipment's column values in businessColumns order.
func businessValues(s *shipment.Shipment) []interface{} {
	return []interface{}{
		s.OrderName,
		s.ShipmentStatus,
		s.StatusDelivery,
		s.SourceLocation,
		s.DestinationLocation,
		s.ServiceProvider,
		s.InsertTime,
		s.ATA,
		s.ATD,
		s.PlanMOSDate,
		s.GlobalPODCycle,
		s.Period,
		s.PMLocation,
		s.LastStatus,
		s.Remark,
		s.IsDeleted,
		s.SheetTitle,
		s.SheetRow,
		s.SheetCell,
	}
}
