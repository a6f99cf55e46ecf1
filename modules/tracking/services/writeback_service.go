package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/hexinli/JakartaBackend/modules/tracking/domain/entities/shipment"
	"github.com/hexinli/JakartaBackend/modules/tracking/sheet"
	"github.com/hexinli/JakartaBackend/pkg/eventbus"
	"github.com/hexinli/JakartaBackend/pkg/gsheets"
	"github.com/hexinli/JakartaBackend/pkg/metrics"
)

var (
	ErrEmptyIdentity = errors.New("identity key is empty")
	ErrNoUpdates     = errors.New("no field updates given")
)

// writeOK marks a successfully applied remote write in the per-field result.
const writeOK = "ok"

const derivedStampLayout = "2006-01-02 15:04:05"

// WriteBackOptions controls one write-back invocation.
type WriteBackOptions struct {
	// SkipRemote applies the database update only.
	SkipRemote bool
	// GenerateIdentity mints a fresh identity key when the caller has none.
	GenerateIdentity bool
}

// WriteBackResult is the structured per-write outcome. Fields maps each
// written column to "ok" or its failure reason; a partial failure is reported
// here, never raised.
type WriteBackResult struct {
	ShipmentNo        string
	Created           bool
	UpdatedCount      int
	SheetTitle        string
	SheetRow          int
	SheetCell         string
	CorrectedPosition bool
	Fields            map[sheet.Field]string
}

// WriteBackConfig locates the spreadsheet and its participating worksheets.
type WriteBackConfig struct {
	SpreadsheetID  string
	FallbackSheet  string
	ExcludedTitles []string
	HeaderRow      int
}

// WriteBackService applies field updates to a shipment's database row and its
// spreadsheet cells, verifying the cached position pointer before every remote
// write and repairing it through a full-sheet scan on drift.
type WriteBackService struct {
	opener    gsheets.Opener
	shipments shipment.Repository
	publisher eventbus.EventBus
	inTx      TxRunner
	log       *logrus.Logger
	cfg       WriteBackConfig
	now       func() time.Time
}

func NewWriteBackService(
	opener gsheets.Opener,
	shipments shipment.Repository,
	publisher eventbus.EventBus,
	inTx TxRunner,
	log *logrus.Logger,
	cfg WriteBackConfig,
) *WriteBackService {
	if cfg.HeaderRow < 1 {
		cfg.HeaderRow = 1
	}
	return &WriteBackService{
		opener:    opener,
		shipments: shipments,
		publisher: publisher,
		inTx:      inTx,
		log:       log,
		cfg:       cfg,
		now:       time.Now,
	}
}

// WriteBack applies updates to one shipment. An unknown identity creates the
// record and appends it to the fallback worksheet; a known one updates the
// database row and the spreadsheet cells at its verified position. Remote
// failures are isolated per field in the result; only validation and
// configuration errors are returned as hard failures.
func (s *WriteBackService) WriteBack(
	ctx context.Context,
	shipmentNo string,
	updates map[sheet.Field]*string,
	opts WriteBackOptions,
) (*WriteBackResult, error) {
	key := sheet.NormalizeIdentity(shipmentNo)
	if key == "" && !opts.GenerateIdentity {
		return nil, ErrEmptyIdentity
	}
	if len(updates) == 0 {
		return nil, ErrNoUpdates
	}
	// Work on a copy: derived stamps must not leak into the caller's map.
	updates = copyUpdates(updates)
	// Identity keys are immutable in place.
	delete(updates, sheet.FieldShipmentNo)
	if key == "" {
		key = s.generateIdentity(updates[sheet.FieldOrderName])
	}
	s.deriveTimestamps(updates)

	result := &WriteBackResult{ShipmentNo: key, Fields: map[sheet.Field]string{}}

	var rec *shipment.Shipment
	err := s.inTx(ctx, func(txCtx context.Context) error {
		existing, err := s.shipments.GetByNumber(txCtx, key)
		if err == shipment.ErrNotFound {
			rec = &shipment.Shipment{ShipmentNo: key}
			for f, v := range updates {
				rec.SetField(f, v)
			}
			result.Created = true
			return s.shipments.Create(txCtx, rec)
		}
		if err != nil {
			return err
		}
		rec = existing
		for f, v := range updates {
			rec.SetField(f, v)
		}
		result.UpdatedCount = len(updates)
		return s.shipments.UpdateFields(txCtx, key, updates)
	})
	if err != nil {
		return nil, err
	}

	if !opts.SkipRemote {
		if result.Created {
			s.appendToFallback(ctx, rec, updates, result)
		} else {
			s.writeCells(ctx, rec, updates, result)
		}
	}

	s.publisher.Publish(WriteBackCompletedEvent{Result: *result})
	return result, nil
}

func copyUpdates(updates map[sheet.Field]*string) map[sheet.Field]*string {
	out := make(map[sheet.Field]*string, len(updates))
	for f, v := range updates {
		out[f] = v
	}
	return out
}

// generateIdentity mints an UNKNOWN-<slug>-<suffix> key for records that
// originate outside the spreadsheet.
func (s *WriteBackService) generateIdentity(orderName *string) string {
	slug := "record"
	if orderName != nil {
		cleaned := strings.Map(func(r rune) rune {
			switch {
			case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
				return r
			case r >= 'A' && r <= 'Z':
				return r + ('a' - 'A')
			default:
				return '-'
			}
		}, strings.TrimSpace(*orderName))
		cleaned = strings.Trim(cleaned, "-")
		if cleaned != "" {
			if len(cleaned) > 24 {
				cleaned = cleaned[:24]
			}
			slug = cleaned
		}
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	return sheet.NormalizeIdentity("UNKNOWN-" + slug + "-" + suffix)
}

// deriveTimestamps stamps the arrival or departure column when the written
// delivery status belongs to the matching vocabulary. Explicit caller values
// win over derived ones.
func (s *WriteBackService) deriveTimestamps(updates map[sheet.Field]*string) {
	status := updates[sheet.FieldStatusDelivery]
	if status == nil {
		return
	}
	normalized := strings.ToUpper(strings.TrimSpace(*status))
	stamp := s.now().Format(derivedStampLayout)
	if _, ok := sheet.ArrivalStatuses[normalized]; ok {
		if _, explicit := updates[sheet.FieldATA]; !explicit {
			updates[sheet.FieldATA] = &stamp
		}
	}
	if _, ok := sheet.DepartureStatuses[normalized]; ok {
		if _, explicit := updates[sheet.FieldATD]; !explicit {
			updates[sheet.FieldATD] = &stamp
		}
	}
}

// appendToFallback writes a freshly created record as one new row on the
// designated fallback worksheet, then locates the appended row to persist its
// position pointer.
func (s *WriteBackService) appendToFallback(
	ctx context.Context,
	rec *shipment.Shipment,
	updates map[sheet.Field]*string,
	result *WriteBackResult,
) {
	doc, err := s.opener.Open(ctx, s.cfg.SpreadsheetID)
	if err != nil {
		s.failAll(updates, result, "open spreadsheet: "+err.Error())
		return
	}
	ws, err := doc.Worksheet(ctx, s.cfg.FallbackSheet)
	if err != nil {
		s.failAll(updates, result, "fallback worksheet: "+err.Error())
		return
	}

	row := make([]string, 0, len(sheet.MappedFields))
	for _, f := range sheet.MappedFields {
		if f == sheet.FieldShipmentNo {
			row = append(row, rec.ShipmentNo)
			continue
		}
		if v := rec.FieldValue(f); v != nil {
			row = append(row, *v)
		} else {
			row = append(row, "")
		}
	}
	if err := ws.AppendRow(ctx, row); err != nil {
		s.failAll(updates, result, "append row: "+err.Error())
		return
	}
	for f := range updates {
		result.Fields[f] = writeOK
		metrics.CellWrites.WithLabelValues("success").Inc()
	}

	matches, err := locateIdentity(ctx, doc, rec.ShipmentNo, s.cfg.HeaderRow, normalizedSet(s.cfg.ExcludedTitles), s.log)
	if err != nil || len(matches) == 0 {
		s.log.WithField("shipment_no", rec.ShipmentNo).Warn("write-back: appended row not yet locatable")
		result.SheetTitle = s.cfg.FallbackSheet
		return
	}
	s.persistPosition(ctx, rec.ShipmentNo, matches[len(matches)-1], result)
}

// writeCells resolves the record's position, then submits all cell writes as
// one batched request, degrading to per-cell writes when the batch fails.
func (s *WriteBackService) writeCells(
	ctx context.Context,
	rec *shipment.Shipment,
	updates map[sheet.Field]*string,
	result *WriteBackResult,
) {
	doc, err := s.opener.Open(ctx, s.cfg.SpreadsheetID)
	if err != nil {
		s.failAll(updates, result, "open spreadsheet: "+err.Error())
		return
	}

	ws, pos, check := verifyPosition(ctx, doc, rec)
	if check == positionNeedsRelocation {
		metrics.PositionFallbacks.Inc()
		matches, err := locateIdentity(ctx, doc, rec.ShipmentNo, s.cfg.HeaderRow, normalizedSet(s.cfg.ExcludedTitles), s.log)
		if err != nil || len(matches) == 0 {
			s.failAll(updates, result, "identity not found in spreadsheet")
			return
		}
		// Most recently read match wins, uniformly across call sites.
		pos = matches[len(matches)-1]
		ws = pos.Worksheet
		result.CorrectedPosition = true
		s.persistPosition(ctx, rec.ShipmentNo, pos, result)
	} else {
		result.SheetTitle = ws.Title()
		result.SheetRow = pos.Row
		result.SheetCell = gsheets.RowColToA1(pos.Row, pos.Col)
	}

	headers, err := ws.ReadRow(ctx, s.cfg.HeaderRow)
	if err != nil {
		s.failAll(updates, result, "read header row: "+err.Error())
		return
	}
	colByHeader := make(map[string]int, len(headers))
	for i, h := range sheet.NormalizeHeaders(headers) {
		colByHeader[h] = i + 1
	}

	note := sheet.NoteText
	style := gsheets.TextStyle{FontSize: 8, LinkURI: sheet.NoteLinkURI}
	type cellWrite struct {
		field sheet.Field
		col   int
		value string
	}
	var writes []cellWrite
	for _, f := range sheet.MappedFields {
		v, ok := updates[f]
		if !ok {
			continue
		}
		col, found := colByHeader[sheet.HeaderForField(f)]
		if !found {
			result.Fields[f] = "column not found in worksheet"
			metrics.CellWrites.WithLabelValues("failure").Inc()
			continue
		}
		value := ""
		if v != nil {
			value = *v
		}
		writes = append(writes, cellWrite{field: f, col: col, value: value})
	}
	if len(writes) == 0 {
		return
	}

	requests := make([]gsheets.Request, 0, len(writes))
	for _, w := range writes {
		value := w.value
		requests = append(requests, gsheets.Request{
			SheetID:  ws.SheetID(),
			StartRow: int64(pos.Row - 1),
			EndRow:   int64(pos.Row),
			StartCol: int64(w.col - 1),
			EndCol:   int64(w.col),
			Value:    &value,
			Note:     &note,
			Style:    &style,
		})
	}

	batchErr := doc.BatchApply(ctx, requests)
	if batchErr == nil {
		for _, w := range writes {
			result.Fields[w.field] = writeOK
			metrics.CellWrites.WithLabelValues("success").Inc()
		}
		return
	}
	s.log.WithError(batchErr).Warn("write-back: batch update failed, degrading to per-cell writes")

	// Per-cell degradation isolates failures: one broken cell must not stop
	// its siblings.
	for _, w := range writes {
		if err := ws.WriteCell(ctx, pos.Row, w.col, w.value); err != nil {
			result.Fields[w.field] = err.Error()
			metrics.CellWrites.WithLabelValues("failure").Inc()
			s.log.WithError(err).WithFields(logrus.Fields{
				"shipment_no": rec.ShipmentNo,
				"field":       string(w.field),
			}).Warn("write-back: cell write failed")
			continue
		}
		if err := ws.ApplyNote(ctx, pos.Row, w.col, note); err != nil {
			s.log.WithError(err).Warn("write-back: note write failed")
		}
		if err := ws.ApplyFormat(ctx, pos.Row, pos.Row, w.col, w.col, style); err != nil {
			s.log.WithError(err).Warn("write-back: format write failed")
		}
		result.Fields[w.field] = writeOK
		metrics.CellWrites.WithLabelValues("success").Inc()
	}
}

func (s *WriteBackService) persistPosition(ctx context.Context, shipmentNo string, pos sheetMatch, result *WriteBackResult) {
	title := pos.Worksheet.Title()
	cell := gsheets.RowColToA1(pos.Row, pos.Col)
	result.SheetTitle = title
	result.SheetRow = pos.Row
	result.SheetCell = cell

	err := s.inTx(ctx, func(txCtx context.Context) error {
		return s.shipments.UpdatePosition(txCtx, shipmentNo, shipment.Position{
			SheetTitle: title,
			SheetRow:   pos.Row,
			SheetCell:  cell,
		})
	})
	if err != nil {
		s.log.WithError(err).WithField("shipment_no", shipmentNo).Warn("write-back: failed to persist corrected position")
	}
}

func (s *WriteBackService) failAll(updates map[sheet.Field]*string, result *WriteBackResult, reason string) {
	for f := range updates {
		result.Fields[f] = reason
		metrics.CellWrites.WithLabelValues("failure").Inc()
	}
	s.log.WithField("shipment_no", result.ShipmentNo).Warn("write-back: " + reason)
}
