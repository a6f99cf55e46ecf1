package services

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/hexinli/JakartaBackend/modules/tracking/domain/entities/shipment"
	"github.com/hexinli/JakartaBackend/modules/tracking/domain/entities/synclog"
	"github.com/hexinli/JakartaBackend/modules/tracking/sheet"
	"github.com/hexinli/JakartaBackend/pkg/eventbus"
	"github.com/hexinli/JakartaBackend/pkg/gsheets"
)

func passTx(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func testPublisher() eventbus.EventBus {
	return eventbus.NewEventPublisher(testLogger())
}

func str(s string) *string { return &s }

// --- spreadsheet fakes ---

type fakeOpener struct {
	doc   *fakeDocument
	err   error
	opens int
}

func (o *fakeOpener) Open(_ context.Context, _ string) (gsheets.Document, error) {
	o.opens++
	if o.err != nil {
		return nil, o.err
	}
	return o.doc, nil
}

type fakeDocument struct {
	worksheets []*fakeWorksheet
	batchErr   error
	batches    [][]gsheets.Request
}

func (d *fakeDocument) ListWorksheets(_ context.Context) ([]gsheets.WorksheetInfo, error) {
	infos := make([]gsheets.WorksheetInfo, 0, len(d.worksheets))
	for _, ws := range d.worksheets {
		infos = append(infos, gsheets.WorksheetInfo{
			Title:       ws.title,
			SheetID:     ws.id,
			ColumnCount: ws.ColumnCount(),
		})
	}
	return infos, nil
}

func (d *fakeDocument) Worksheet(_ context.Context, title string) (gsheets.Worksheet, error) {
	for _, ws := range d.worksheets {
		if ws.title == title {
			return ws, nil
		}
	}
	return nil, errors.Errorf("worksheet %q not found", title)
}

func (d *fakeDocument) BatchApply(_ context.Context, requests []gsheets.Request) error {
	if d.batchErr != nil {
		return d.batchErr
	}
	d.batches = append(d.batches, requests)
	return nil
}

type fakeWorksheet struct {
	title string
	id    int64
	cols  int64
	rows  [][]string

	readErr  error
	failCols map[int]bool

	appended   [][]string
	cellWrites map[string]string
	notes      int
	formats    int
}

func (w *fakeWorksheet) Title() string  { return w.title }
func (w *fakeWorksheet) SheetID() int64 { return w.id }

func (w *fakeWorksheet) ColumnCount() int64 {
	if w.cols > 0 {
		return w.cols
	}
	var max int
	for _, row := range w.rows {
		if len(row) > max {
			max = len(row)
		}
	}
	return int64(max)
}

func (w *fakeWorksheet) ReadAllValues(_ context.Context) ([][]string, error) {
	if w.readErr != nil {
		return nil, w.readErr
	}
	return w.rows, nil
}

func (w *fakeWorksheet) ReadRow(_ context.Context, row int) ([]string, error) {
	if w.readErr != nil {
		return nil, w.readErr
	}
	if row < 1 || row > len(w.rows) {
		return nil, nil
	}
	return w.rows[row-1], nil
}

func (w *fakeWorksheet) ReadColumn(_ context.Context, col int) ([]string, error) {
	if w.readErr != nil {
		return nil, w.readErr
	}
	values := make([]string, len(w.rows))
	for i, row := range w.rows {
		if col-1 < len(row) {
			values[i] = row[col-1]
		}
	}
	return values, nil
}

func (w *fakeWorksheet) ReadCell(_ context.Context, row, col int) (string, error) {
	if w.readErr != nil {
		return "", w.readErr
	}
	if row < 1 || row > len(w.rows) {
		return "", nil
	}
	if col-1 >= len(w.rows[row-1]) {
		return "", nil
	}
	return w.rows[row-1][col-1], nil
}

func (w *fakeWorksheet) WriteCell(_ context.Context, row, col int, value string) error {
	if w.failCols[col] {
		return errors.New("cell write refused")
	}
	if w.cellWrites == nil {
		w.cellWrites = map[string]string{}
	}
	w.cellWrites[gsheets.RowColToA1(row, col)] = value
	return nil
}

func (w *fakeWorksheet) AppendRow(_ context.Context, values []string) error {
	w.appended = append(w.appended, values)
	w.rows = append(w.rows, values)
	return nil
}

func (w *fakeWorksheet) ApplyNote(_ context.Context, _, _ int, _ string) error {
	w.notes++
	return nil
}

func (w *fakeWorksheet) ApplyFormat(_ context.Context, _, _, _, _ int, _ gsheets.TextStyle) error {
	w.formats++
	return nil
}

// --- repository fakes ---

type fakeShipmentRepo struct {
	records map[string]*shipment.Shipment
	nextID  uint
	// touched counts rows actually modified by the last BulkUpsert,
	// emulating the diff-gated update.
	touched int
}

func newFakeShipmentRepo() *fakeShipmentRepo {
	return &fakeShipmentRepo{records: map[string]*shipment.Shipment{}}
}

func cloneShipment(s *shipment.Shipment) *shipment.Shipment {
	c := *s
	return &c
}

func sameBusinessState(a, b *shipment.Shipment) bool {
	eq := func(x, y *string) bool {
		if x == nil || y == nil {
			return x == nil && y == nil
		}
		return *x == *y
	}
	for _, f := range sheet.MappedFields {
		if f == sheet.FieldShipmentNo {
			continue
		}
		if !eq(a.FieldValue(f), b.FieldValue(f)) {
			return false
		}
	}
	if a.IsDeleted != b.IsDeleted {
		return false
	}
	eqInt := func(x, y *int) bool {
		if x == nil || y == nil {
			return x == nil && y == nil
		}
		return *x == *y
	}
	return eq(a.SheetTitle, b.SheetTitle) && eqInt(a.SheetRow, b.SheetRow) && eq(a.SheetCell, b.SheetCell)
}

func (r *fakeShipmentRepo) GetByNumber(_ context.Context, shipmentNo string) (*shipment.Shipment, error) {
	rec, ok := r.records[shipmentNo]
	if !ok {
		return nil, shipment.ErrNotFound
	}
	return cloneShipment(rec), nil
}

func (r *fakeShipmentRepo) FindByOrderName(_ context.Context, orderName string) ([]*shipment.Shipment, error) {
	var out []*shipment.Shipment
	for _, rec := range r.records {
		if rec.IsDeleted || rec.OrderName == nil {
			continue
		}
		if *rec.OrderName == orderName {
			out = append(out, cloneShipment(rec))
		}
	}
	return out, nil
}

func (r *fakeShipmentRepo) ExistingKeys(_ context.Context) ([]shipment.KeyState, error) {
	keys := make([]shipment.KeyState, 0, len(r.records))
	for no, rec := range r.records {
		keys = append(keys, shipment.KeyState{ShipmentNo: no, IsDeleted: rec.IsDeleted})
	}
	return keys, nil
}

func (r *fakeShipmentRepo) BulkUpsert(_ context.Context, rows []*shipment.Shipment) error {
	r.touched = 0
	for _, row := range rows {
		existing, ok := r.records[row.ShipmentNo]
		if ok && sameBusinessState(existing, row) {
			continue
		}
		stored := cloneShipment(row)
		if ok {
			stored.ID = existing.ID
		} else {
			r.nextID++
			stored.ID = r.nextID
		}
		r.records[row.ShipmentNo] = stored
		r.touched++
	}
	return nil
}

func (r *fakeShipmentRepo) SoftDeleteMissing(_ context.Context, seen []string) (int64, error) {
	seenSet := make(map[string]struct{}, len(seen))
	for _, s := range seen {
		seenSet[s] = struct{}{}
	}
	var n int64
	for no, rec := range r.records {
		if rec.IsDeleted {
			continue
		}
		if _, ok := seenSet[no]; !ok {
			rec.IsDeleted = true
			n++
		}
	}
	return n, nil
}

func (r *fakeShipmentRepo) Create(_ context.Context, s *shipment.Shipment) error {
	if _, ok := r.records[s.ShipmentNo]; ok {
		return fmt.Errorf("duplicate shipment %q", s.ShipmentNo)
	}
	r.nextID++
	s.ID = r.nextID
	r.records[s.ShipmentNo] = cloneShipment(s)
	return nil
}

func (r *fakeShipmentRepo) UpdateFields(_ context.Context, shipmentNo string, updates map[sheet.Field]*string) error {
	rec, ok := r.records[shipmentNo]
	if !ok {
		return shipment.ErrNotFound
	}
	for f, v := range updates {
		rec.SetField(f, v)
	}
	return nil
}

func (r *fakeShipmentRepo) UpdatePosition(_ context.Context, shipmentNo string, pos shipment.Position) error {
	rec, ok := r.records[shipmentNo]
	if !ok {
		return shipment.ErrNotFound
	}
	rec.SheetTitle = &pos.SheetTitle
	rec.SheetRow = &pos.SheetRow
	rec.SheetCell = &pos.SheetCell
	return nil
}

type fakeSyncLogRepo struct {
	entries []*synclog.SyncLog
}

func (r *fakeSyncLogRepo) Create(_ context.Context, log *synclog.SyncLog) error {
	log.ID = uint(len(r.entries) + 1)
	r.entries = append(r.entries, log)
	return nil
}

func (r *fakeSyncLogRepo) Latest(_ context.Context) (*synclog.SyncLog, error) {
	if len(r.entries) == 0 {
		return nil, nil
	}
	return r.entries[len(r.entries)-1], nil
}

func (r *fakeSyncLogRepo) List(_ context.Context, limit, offset int) ([]*synclog.SyncLog, error) {
	var out []*synclog.SyncLog
	for i := len(r.entries) - 1 - offset; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		out = append(out, r.entries[i])
	}
	return out, nil
}
