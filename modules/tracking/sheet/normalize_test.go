package sheet

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeHeader(t *testing.T) {
	require.Equal(t, "shipment no", NormalizeHeader("Shipment_No"))
	require.Equal(t, "shipment no", NormalizeHeader("  Shipment.No  "))
	require.Equal(t, "pm location", NormalizeHeader("PM   Location"))
	require.Equal(t, "", NormalizeHeader("  "))
}

func TestNormalizeHeaders(t *testing.T) {
	got := NormalizeHeaders([]string{"Shipment No", "ORDER_NAME", "Remark"})
	require.Equal(t, []string{"shipment no", "order name", "remark"}, got)
}

func TestNormalizeCell(t *testing.T) {
	require.Nil(t, NormalizeCell(""))
	require.Nil(t, NormalizeCell("   "))
	v := NormalizeCell("  POD  ")
	require.NotNil(t, v)
	require.Equal(t, "POD", *v)
	// Date-like text passes through raw.
	d := NormalizeCell("15 Sept 25")
	require.Equal(t, "15 Sept 25", *d)
}

func TestNormalizeIdentity(t *testing.T) {
	require.Equal(t, "SHP 001", NormalizeIdentity("  shp  001 "))
	require.Equal(t, "", NormalizeIdentity("   "))
}

func TestMapRow(t *testing.T) {
	headers := NormalizeHeaders([]string{"Shipment No", "Mystery Column", "PM Location"})
	row := []string{" SHP-1 ", "ignored", ""}

	payload := MapRow(headers, row)

	require.Equal(t, "SHP-1", *payload[FieldShipmentNo])
	require.Nil(t, payload[FieldPMLocation])
	// Mapped headers absent from the sheet yield nil, unknown headers are dropped.
	require.Nil(t, payload[FieldOrderName])
	require.Contains(t, payload, FieldRemark)
}

func TestMapRow_ShortRow(t *testing.T) {
	headers := NormalizeHeaders([]string{"Shipment No", "Order Name"})
	payload := MapRow(headers, []string{"SHP-2"})
	require.Equal(t, "SHP-2", *payload[FieldShipmentNo])
	require.Nil(t, payload[FieldOrderName])
}

func TestRowIsBlank(t *testing.T) {
	require.True(t, RowIsBlank([]string{"", "  ", ""}))
	require.True(t, RowIsBlank(nil))
	require.False(t, RowIsBlank([]string{"", "x"}))
}
