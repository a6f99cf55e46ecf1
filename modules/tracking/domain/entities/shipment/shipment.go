package shipment

import (
	"context"
	"errors"
	"time"

	"github.com/hexinli/JakartaBackend/modules/tracking/sheet"
)

var ErrNotFound = errors.New("shipment not found")

// Position is the cached spreadsheet location of a shipment's identity cell.
// It is advisory: every write-back verifies it before trusting it.
type Position struct {
	SheetTitle string
	SheetRow   int
	SheetCell  string
}

// Shipment mirrors one spreadsheet row. ShipmentNo is the identity key and is
// immutable once created; business fields, the soft-delete flag and the
// position pointer may change.
type Shipment struct {
	ID         uint
	ShipmentNo string

	OrderName           *string
	ShipmentStatus      *string
	StatusDelivery      *string
	SourceLocation      *string
	DestinationLocation *string
	ServiceProvider     *string
	InsertTime          *string
	ATA                 *string
	ATD                 *string
	PlanMOSDate         *string
	GlobalPODCycle      *string
	Period              *string
	PMLocation          *string
	LastStatus          *string
	Remark              *string

	IsDeleted  bool
	SheetTitle *string
	SheetRow   *int
	SheetCell  *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// FieldValue returns the business field addressed by a canonical field name.
func (s *Shipment) FieldValue(f sheet.Field) *string {
	switch f {
	case sheet.FieldOrderName:
		return s.OrderName
	case sheet.FieldShipmentStatus:
		return s.ShipmentStatus
	case sheet.FieldStatusDelivery:
		return s.StatusDelivery
	case sheet.FieldSourceLocation:
		return s.SourceLocation
	case sheet.FieldDestinationLocation:
		return s.DestinationLocation
	case sheet.FieldServiceProvider:
		return s.ServiceProvider
	case sheet.FieldInsertTime:
		return s.InsertTime
	case sheet.FieldATA:
		return s.ATA
	case sheet.FieldATD:
		return s.ATD
	case sheet.FieldPlanMOSDate:
		return s.PlanMOSDate
	case sheet.FieldGlobalPODCycle:
		return s.GlobalPODCycle
	case sheet.FieldPeriod:
		return s.Period
	case sheet.FieldPMLocation:
		return s.PMLocation
	case sheet.FieldLastStatus:
		return s.LastStatus
	case sheet.FieldRemark:
		return s.Remark
	}
	return nil
}

// SetField assigns the business field addressed by a canonical field name.
// The identity field is ignored: shipment numbers never change in place.
func (s *Shipment) SetField(f sheet.Field, value *string) {
	switch f {
	case sheet.FieldOrderName:
		s.OrderName = value
	case sheet.FieldShipmentStatus:
		s.ShipmentStatus = value
	case sheet.FieldStatusDelivery:
		s.StatusDelivery = value
	case sheet.FieldSourceLocation:
		s.SourceLocation = value
	case sheet.FieldDestinationLocation:
		s.DestinationLocation = value
	case sheet.FieldServiceProvider:
		s.ServiceProvider = value
	case sheet.FieldInsertTime:
		s.InsertTime = value
	case sheet.FieldATA:
		s.ATA = value
	case sheet.FieldATD:
		s.ATD = value
	case sheet.FieldPlanMOSDate:
		s.PlanMOSDate = value
	case sheet.FieldGlobalPODCycle:
		s.GlobalPODCycle = value
	case sheet.FieldPeriod:
		s.Period = value
	case sheet.FieldPMLocation:
		s.PMLocation = value
	case sheet.FieldLastStatus:
		s.LastStatus = value
	case sheet.FieldRemark:
		s.Remark = value
	}
}

// KeyState is the pre-upsert snapshot entry used for count computation.
type KeyState struct {
	ShipmentNo string
	IsDeleted  bool
}

type Repository interface {
	GetByNumber(ctx context.Context, shipmentNo string) (*Shipment, error)
	FindByOrderName(ctx context.Context, orderName string) ([]*Shipment, error)
	// ExistingKeys snapshots all identity keys with their soft-delete state.
	ExistingKeys(ctx context.Context) ([]KeyState, error)
	// BulkUpsert inserts or updates rows keyed on shipment_no in one
	// set-based statement. The update clause is diff-gated: a stored row is
	// only touched when at least one tracked column actually differs.
	BulkUpsert(ctx context.Context, rows []*Shipment) error
	// SoftDeleteMissing marks active rows whose keys are absent from seen.
	SoftDeleteMissing(ctx context.Context, seen []string) (int64, error)
	Create(ctx context.Context, s *Shipment) error
	UpdateFields(ctx context.Context, shipmentNo string, updates map[sheet.Field]*string) error
	UpdatePosition(ctx context.Context, shipmentNo string, pos Position) error
}
