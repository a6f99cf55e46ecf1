package persistence

import (
	"github.com/hexinli/JakartaBackend/modules/tracking/domain/entities/shipment"
	"github.com/hexinli/JakartaBackend/modules/tracking/domain/entities/synclog"
	"github.com/hexinli/JakartaBackend/modules/tracking/infrastructure/persistence/models"
)

func toDomainShipment(row *models.Shipment) *shipment.Shipment {
	return &shipment.Shipment{
		ID:                  row.ID,
		ShipmentNo:          row.ShipmentNo,
		OrderName:           row.OrderName,
		ShipmentStatus:      row.ShipmentStatus,
		StatusDelivery:      row.StatusDelivery,
		SourceLocation:      row.SourceLocation,
		DestinationLocation: row.DestinationLocation,
		ServiceProvider:     row.ServiceProvider,
		InsertTime:          row.InsertTime,
		ATA:                 row.ATA,
		ATD:                 row.ATD,
		PlanMOSDate:         row.PlanMOSDate,
		GlobalPODCycle:      row.GlobalPODCycle,
		Period:              row.Period,
		PMLocation:          row.PMLocation,
		LastStatus:          row.LastStatus,
		Remark:              row.Remark,
		IsDeleted:           row.IsDeleted,
		SheetTitle:          row.SheetTitle,
		SheetRow:            row.SheetRow,
		SheetCell:           row.SheetCell,
		CreatedAt:           row.CreatedAt,
		UpdatedAt:           row.UpdatedAt,
	}
}

func toDomainSyncLog(row *models.SyncLog) *synclog.SyncLog {
	return &synclog.SyncLog{
		ID:          row.ID,
		Status:      row.Status,
		Created:     row.Created,
		Updated:     row.Updated,
		SoftDeleted: row.SoftDeleted,
		Total:       row.Total,
		Message:     row.Message,
		ErrorDetail: row.ErrorDetail,
		CreatedAt:   row.CreatedAt,
	}
}
