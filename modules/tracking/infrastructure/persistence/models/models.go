package models

import "time"

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

type SyncLog struct {
	ID          uint
	Status      string
	Created     int
	Updated     int
	SoftDeleted int
	Total       int
	Message     *string
	ErrorDetail *string
	CreatedAt   time.Time
}
