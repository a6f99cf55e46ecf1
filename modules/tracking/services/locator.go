package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/hexinli/JakartaBackend/modules/tracking/domain/entities/shipment"
	"github.com/hexinli/JakartaBackend/modules/tracking/sheet"
	"github.com/hexinli/JakartaBackend/pkg/gsheets"
)

// positionCheck is the outcome of verifying a cached position pointer.
type positionCheck int

const (
	positionVerified positionCheck = iota
	positionNeedsRelocation
)

// sheetMatch is one located occurrence of an identity key.
type sheetMatch struct {
	Worksheet gsheets.Worksheet
	Row       int // 1-based
	Col       int // 1-based identity column
}

// verifyPosition checks that the identity value stored at a record's cached
// position still equals its identity key. The pointer is a cache, never a
// source of truth: any read failure counts as a verification failure, not an
// error.
func verifyPosition(ctx context.Context, doc gsheets.Document, s *shipment.Shipment) (gsheets.Worksheet, sheetMatch, positionCheck) {
	if s.SheetTitle == nil || s.SheetRow == nil || s.SheetCell == nil {
		return nil, sheetMatch{}, positionNeedsRelocation
	}
	_, col, err := gsheets.A1ToRowCol(*s.SheetCell)
	if err != nil {
		return nil, sheetMatch{}, positionNeedsRelocation
	}
	ws, err := doc.Worksheet(ctx, *s.SheetTitle)
	if err != nil {
		return nil, sheetMatch{}, positionNeedsRelocation
	}
	value, err := ws.ReadCell(ctx, *s.SheetRow, col)
	if err != nil {
		return nil, sheetMatch{}, positionNeedsRelocation
	}
	if sheet.NormalizeIdentity(value) != sheet.NormalizeIdentity(s.ShipmentNo) {
		return nil, sheetMatch{}, positionNeedsRelocation
	}
	return ws, sheetMatch{Worksheet: ws, Row: *s.SheetRow, Col: col}, positionVerified
}

// locateIdentity scans every eligible worksheet for rows whose identity
// column equals the given key, reading one header row and one identity column
// per sheet. All matches are returned in read order; callers apply the
// last-match policy. Per-sheet read failures are logged and skipped.
func locateIdentity(
	ctx context.Context,
	doc gsheets.Document,
	identity string,
	headerRow int,
	excluded map[string]struct{},
	log *logrus.Logger,
) ([]sheetMatch, error) {
	infos, err := doc.ListWorksheets(ctx)
	if err != nil {
		return nil, err
	}

	target := sheet.NormalizeIdentity(identity)
	var matches []sheetMatch
	for _, info := range infos {
		if !eligibleTitle(info.Title, "", excluded) {
			continue
		}
		ws, err := doc.Worksheet(ctx, info.Title)
		if err != nil {
			log.WithError(err).WithField("sheet", info.Title).Warn("locate: open worksheet failed, skipping")
			continue
		}
		headers, err := ws.ReadRow(ctx, headerRow)
		if err != nil {
			log.WithError(err).WithField("sheet", info.Title).Warn("locate: read header row failed, skipping")
			continue
		}
		idCol := findIdentityColumn(sheet.NormalizeHeaders(headers))
		if idCol < 0 {
			continue
		}
		values, err := ws.ReadColumn(ctx, idCol+1)
		if err != nil {
			log.WithError(err).WithField("sheet", info.Title).Warn("locate: read identity column failed, skipping")
			continue
		}
		for i := headerRow; i < len(values); i++ {
			if sheet.NormalizeIdentity(values[i]) == target {
				matches = append(matches, sheetMatch{Worksheet: ws, Row: i + 1, Col: idCol + 1})
			}
		}
	}
	return matches, nil
}
