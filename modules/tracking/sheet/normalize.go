package sheet

import "strings"

// NormalizeHeader lowercases a raw header cell, replaces separator characters
// with spaces and collapses internal whitespace. The same normalization is
// applied to worksheet titles before matching them against the exclusion set.
func NormalizeHeader(value string) string {
	text := strings.ToLower(value)
	text = strings.ReplaceAll(text, ".", " ")
	text = strings.ReplaceAll(text, "_", " ")
	return strings.Join(strings.Fields(text), " ")
}

// NormalizeHeaders normalizes a full header row in order.
func NormalizeHeaders(headers []string) []string {
	out := make([]string, len(headers))
	for i, h := range headers {
		out[i] = NormalizeHeader(h)
	}
	return out
}

// NormalizeCell trims a raw cell value; empty strings become nil. Date-like
// text passes through untouched: parsing dates is a downstream concern.
func NormalizeCell(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// NormalizeIdentity canonicalizes an identity key (shipment number) for
// comparison: trimmed, internal whitespace collapsed, uppercased.
func NormalizeIdentity(value string) string {
	return strings.ToUpper(strings.Join(strings.Fields(value), " "))
}

// MapRow converts one raw data row into canonical field values using the
// fixed header map. Headers not in the map are dropped; mapped headers missing
// from the row yield nil values.
func MapRow(normalizedHeaders []string, row []string) map[Field]*string {
	payload := make(map[Field]*string, len(HeaderFieldMap))
	byHeader := make(map[string]*string, len(normalizedHeaders))
	for i, header := range normalizedHeaders {
		if i >= len(row) {
			break
		}
		byHeader[header] = NormalizeCell(row[i])
	}
	for header, field := range HeaderFieldMap {
		payload[field] = byHeader[header]
	}
	return payload
}

// RowIsBlank reports whether every cell in the row is empty after trimming.
func RowIsBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
