// Package services implements the three top-level sync operations: bulk
// pull-sync, targeted write-back and the archival sweep. Each operation opens
// one short-lived spreadsheet session, runs to completion on a single worker
// and returns a structured result instead of failing on partial errors.
package services

import (
	"context"
	"strings"

	"github.com/hexinli/JakartaBackend/modules/tracking/sheet"
)

// TxRunner executes fn inside a database transaction. Production wiring uses
// composables.InTx; tests substitute a passthrough.
type TxRunner func(ctx context.Context, fn func(context.Context) error) error

// identityHeader is the normalized header of the identity column.
var identityHeader = sheet.HeaderForField(sheet.FieldShipmentNo)

// normalizedSet builds a lookup set of normalized worksheet titles.
func normalizedSet(titles []string) map[string]struct{} {
	set := make(map[string]struct{}, len(titles))
	for _, t := range titles {
		set[sheet.NormalizeHeader(t)] = struct{}{}
	}
	return set
}

// eligibleTitle reports whether a worksheet participates in syncing: its
// normalized title must not be excluded and, when a plan prefix is configured,
// the raw title must carry it.
func eligibleTitle(title, planPrefix string, excluded map[string]struct{}) bool {
	if _, ok := excluded[sheet.NormalizeHeader(title)]; ok {
		return false
	}
	if planPrefix != "" && !strings.HasPrefix(title, planPrefix) {
		return false
	}
	return true
}

// findIdentityColumn returns the 0-based index of the identity column in a
// normalized header row, or -1.
func findIdentityColumn(normalizedHeaders []string) int {
	for i, h := range normalizedHeaders {
		if h == identityHeader {
			return i
		}
	}
	return -1
}
