package sheet

// Field is a canonical business column of the tracked spreadsheet.
type Field string

const (
	FieldShipmentNo          Field = "shipment_no"
	FieldOrderName           Field = "order_name"
	FieldShipmentStatus      Field = "shipment_status"
	FieldStatusDelivery      Field = "status_delivery"
	FieldSourceLocation      Field = "source_location"
	FieldDestinationLocation Field = "destination_location"
	FieldServiceProvider     Field = "service_provider"
	FieldInsertTime          Field = "insert_time"
	FieldATA                 Field = "ata"
	FieldATD                 Field = "atd"
	FieldPlanMOSDate         Field = "plan_mos_date"
	FieldGlobalPODCycle      Field = "global_pod_cycle_statistic"
	FieldPeriod              Field = "period"
	FieldPMLocation          Field = "pm_location"
	FieldLastStatus          Field = "last_status"
	FieldRemark              Field = "remark"
)

// HeaderFieldMap maps normalized spreadsheet headers to canonical fields. It
// is fixed at build time: unknown headers are dropped, never reflected.
var HeaderFieldMap = map[string]Field{
	"shipment no":                FieldShipmentNo,
	"order name":                 FieldOrderName,
	"shipment status":            FieldShipmentStatus,
	"status delivery":            FieldStatusDelivery,
	"source location":            FieldSourceLocation,
	"destination location":       FieldDestinationLocation,
	"service provider":           FieldServiceProvider,
	"insert time":                FieldInsertTime,
	"ata":                        FieldATA,
	"atd":                        FieldATD,
	"plan mos date":              FieldPlanMOSDate,
	"global pod cycle statistic": FieldGlobalPODCycle,
	"period":                     FieldPeriod,
	"pm location":                FieldPMLocation,
	"last status":                FieldLastStatus,
	"remark":                     FieldRemark,
}

var fieldHeaders = func() map[Field]string {
	inverted := make(map[Field]string, len(HeaderFieldMap))
	for header, field := range HeaderFieldMap {
		inverted[field] = header
	}
	return inverted
}()

// HeaderForField returns the normalized header text a canonical field is
// matched against in the spreadsheet.
func HeaderForField(f Field) string {
	return fieldHeaders[f]
}

// MappedFields lists canonical fields in a stable order, used when building
// upsert column lists.
var MappedFields = []Field{
	FieldShipmentNo,
	FieldOrderName,
	FieldShipmentStatus,
	FieldStatusDelivery,
	FieldSourceLocation,
	FieldDestinationLocation,
	FieldServiceProvider,
	FieldInsertTime,
	FieldATA,
	FieldATD,
	FieldPlanMOSDate,
	FieldGlobalPODCycle,
	FieldPeriod,
	FieldPMLocation,
	FieldLastStatus,
	FieldRemark,
}

// Status vocabularies that trigger derived timestamp writes. A delivery status
// from the arrival set also stamps the ATA column; the departure set stamps ATD.
var (
	ArrivalStatuses = map[string]struct{}{
		"ARRIVED AT SITE": {},
		"POD":             {},
	}
	DepartureStatuses = map[string]struct{}{
		"DEPART FROM WH":    {},
		"DEPART FROM XD/PM": {},
	}
)

// TerminalStatus is the delivery status that makes a row eligible for the
// archival sweep.
const TerminalStatus = "POD"

const (
	// NoteText annotates every cell the engine writes.
	NoteText = "Modified by Fast Tracker"
	// NoteLinkURI is attached to written cells and archived rows.
	NoteLinkURI = "https://idnsc.dpdns.org/admin"
)
