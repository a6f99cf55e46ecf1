package services

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hexinli/JakartaBackend/modules/tracking/domain/entities/shipment"
	"github.com/hexinli/JakartaBackend/modules/tracking/domain/entities/synclog"
)

func newPullService(opener *fakeOpener, repo *fakeShipmentRepo, logs *fakeSyncLogRepo, opts PullOptions) *PullService {
	return NewPullService(opener, repo, logs, testPublisher(), passTx, testLogger(), opts)
}

func planSheet(title string, id int64, dataRows ...[]string) *fakeWorksheet {
	rows := [][]string{{"Shipment No.", "Order Name", "Status Delivery", "Plan MOS Date"}}
	rows = append(rows, dataRows...)
	return &fakeWorksheet{title: title, id: id, rows: rows}
}

func TestPull_CreatesRecordsWithProvenance(t *testing.T) {
	doc := &fakeDocument{worksheets: []*fakeWorksheet{
		planSheet("Week 1", 11,
			[]string{"SHP-001", "Order A", "POD", "1 Jan 2026"},
			[]string{"SHP-002", "Order B", "", ""},
		),
	}}
	repo := newFakeShipmentRepo()
	logs := &fakeSyncLogRepo{}
	svc := newPullService(&fakeOpener{doc: doc}, repo, logs, PullOptions{SpreadsheetID: "doc-1", HeaderRow: 1})

	result, err := svc.Pull(context.Background())
	require.NoError(t, err)
	assert.Equal(t, PullResult{Created: 2, Total: 2}, result)

	rec := repo.records["SHP-001"]
	require.NotNil(t, rec)
	require.NotNil(t, rec.OrderName)
	assert.Equal(t, "Order A", *rec.OrderName)
	require.NotNil(t, rec.SheetTitle)
	assert.Equal(t, "Week 1", *rec.SheetTitle)
	require.NotNil(t, rec.SheetRow)
	assert.Equal(t, 2, *rec.SheetRow)
	require.NotNil(t, rec.SheetCell)
	assert.Equal(t, "A2", *rec.SheetCell)

	require.Len(t, logs.entries, 1)
	assert.Equal(t, synclog.StatusSuccess, logs.entries[0].Status)
	assert.Equal(t, 2, logs.entries[0].Created)
}

func TestPull_MissingSpreadsheetIDFailsBeforeRemoteCalls(t *testing.T) {
	opener := &fakeOpener{doc: &fakeDocument{}}
	svc := newPullService(opener, newFakeShipmentRepo(), &fakeSyncLogRepo{}, PullOptions{})

	_, err := svc.Pull(context.Background())
	require.ErrorIs(t, err, ErrNoSpreadsheet)
	assert.Zero(t, opener.opens)
}

func TestPull_SecondRunWithUnchangedSourceIsIdempotent(t *testing.T) {
	doc := &fakeDocument{worksheets: []*fakeWorksheet{
		planSheet("Week 1", 11, []string{"SHP-001", "Order A", "POD", "1 Jan 2026"}),
	}}
	repo := newFakeShipmentRepo()
	svc := newPullService(&fakeOpener{doc: doc}, repo, &fakeSyncLogRepo{}, PullOptions{SpreadsheetID: "doc-1"})

	_, err := svc.Pull(context.Background())
	require.NoError(t, err)

	result, err := svc.Pull(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.Created)
	assert.Zero(t, result.SoftDeleted)
	// The diff-gated upsert must leave byte-identical rows untouched.
	assert.Zero(t, repo.touched)
}

func TestPull_SoftDeleteIsReversibleOnReappearance(t *testing.T) {
	week := planSheet("Week 1", 11,
		[]string{"SHP-001", "Order A", "", ""},
		[]string{"SHP-002", "Order B", "", ""},
	)
	doc := &fakeDocument{worksheets: []*fakeWorksheet{week}}
	repo := newFakeShipmentRepo()
	svc := newPullService(&fakeOpener{doc: doc}, repo, &fakeSyncLogRepo{}, PullOptions{SpreadsheetID: "doc-1"})

	_, err := svc.Pull(context.Background())
	require.NoError(t, err)

	week.rows = week.rows[:2] // SHP-002 vanishes
	result, err := svc.Pull(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.SoftDeleted)
	assert.True(t, repo.records["SHP-002"].IsDeleted)

	week.rows = append(week.rows, []string{"SHP-002", "Order B", "", ""})
	result, err = svc.Pull(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.SoftDeleted)
	assert.False(t, repo.records["SHP-002"].IsDeleted)
}

func TestPull_LastOccurrenceWinsAcrossWorksheets(t *testing.T) {
	doc := &fakeDocument{worksheets: []*fakeWorksheet{
		planSheet("Week 1", 11, []string{"SHP-001", "Old Name", "", ""}),
		planSheet("Week 2", 12, []string{"SHP-001", "New Name", "", ""}),
	}}
	repo := newFakeShipmentRepo()
	svc := newPullService(&fakeOpener{doc: doc}, repo, &fakeSyncLogRepo{}, PullOptions{SpreadsheetID: "doc-1"})

	result, err := svc.Pull(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Total)

	rec := repo.records["SHP-001"]
	require.NotNil(t, rec)
	require.NotNil(t, rec.OrderName)
	assert.Equal(t, "New Name", *rec.OrderName)
	assert.Equal(t, "Week 2", *rec.SheetTitle)
}

func TestPull_WorksheetReadFailureIsSkipped(t *testing.T) {
	broken := planSheet("Week 1", 11, []string{"SHP-001", "Order A", "", ""})
	broken.readErr = errors.New("transient read failure")
	doc := &fakeDocument{worksheets: []*fakeWorksheet{
		broken,
		planSheet("Week 2", 12, []string{"SHP-002", "Order B", "", ""}),
	}}
	repo := newFakeShipmentRepo()
	svc := newPullService(&fakeOpener{doc: doc}, repo, &fakeSyncLogRepo{}, PullOptions{SpreadsheetID: "doc-1"})

	result, err := svc.Pull(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Total)
	assert.Nil(t, repo.records["SHP-001"])
	assert.NotNil(t, repo.records["SHP-002"])
}

func TestPull_SkipsExcludedAndNonPlanWorksheets(t *testing.T) {
	doc := &fakeDocument{worksheets: []*fakeWorksheet{
		planSheet("Plan MOS W34", 11, []string{"SHP-001", "Order A", "", ""}),
		planSheet("PM Location & Contact PIC", 12, []string{"SHP-002", "Order B", "", ""}),
		planSheet("Scratch", 13, []string{"SHP-003", "Order C", "", ""}),
	}}
	repo := newFakeShipmentRepo()
	svc := newPullService(&fakeOpener{doc: doc}, repo, &fakeSyncLogRepo{}, PullOptions{
		SpreadsheetID:   "doc-1",
		PlanSheetPrefix: "Plan MOS",
		ExcludedTitles:  []string{"pm location & contact pic", "other"},
	})

	result, err := svc.Pull(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Total)
	assert.NotNil(t, repo.records["SHP-001"])
	assert.Nil(t, repo.records["SHP-002"])
	assert.Nil(t, repo.records["SHP-003"])
}

func TestPull_SkipsBlankRowsAndEmptyIdentities(t *testing.T) {
	doc := &fakeDocument{worksheets: []*fakeWorksheet{
		planSheet("Week 1", 11,
			[]string{"", "", "", ""},
			[]string{"   ", "Order A", "", ""},
			[]string{"SHP-001", "Order B", "", ""},
		),
	}}
	repo := newFakeShipmentRepo()
	svc := newPullService(&fakeOpener{doc: doc}, repo, &fakeSyncLogRepo{}, PullOptions{SpreadsheetID: "doc-1"})

	result, err := svc.Pull(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Total)
	rec := repo.records["SHP-001"]
	require.NotNil(t, rec)
	assert.Equal(t, 4, *rec.SheetRow)
}

func TestPull_EmptySourceYieldsAllZeroResult(t *testing.T) {
	doc := &fakeDocument{worksheets: []*fakeWorksheet{
		{title: "Week 1", id: 11, rows: [][]string{{"Shipment No.", "Order Name"}}},
	}}
	svc := newPullService(&fakeOpener{doc: doc}, newFakeShipmentRepo(), &fakeSyncLogRepo{}, PullOptions{SpreadsheetID: "doc-1"})

	result, err := svc.Pull(context.Background())
	require.NoError(t, err)
	assert.Equal(t, PullResult{}, result)
}

func TestPull_EmptySourceLeavesExistingRecordsActive(t *testing.T) {
	repo := newFakeShipmentRepo()
	require.NoError(t, repo.Create(context.Background(), &shipment.Shipment{ShipmentNo: "SHP-001", OrderName: str("Order A")}))
	require.NoError(t, repo.Create(context.Background(), &shipment.Shipment{ShipmentNo: "SHP-002", OrderName: str("Order B")}))

	// Only a header row survives the read: the sweep must not run at all.
	doc := &fakeDocument{worksheets: []*fakeWorksheet{
		{title: "Week 1", id: 11, rows: [][]string{{"Shipment No.", "Order Name"}}},
	}}
	logs := &fakeSyncLogRepo{}
	svc := newPullService(&fakeOpener{doc: doc}, repo, logs, PullOptions{SpreadsheetID: "doc-1"})

	result, err := svc.Pull(context.Background())
	require.NoError(t, err)
	assert.Equal(t, PullResult{}, result)
	assert.False(t, repo.records["SHP-001"].IsDeleted)
	assert.False(t, repo.records["SHP-002"].IsDeleted)
	require.Len(t, logs.entries, 1)
	assert.Equal(t, synclog.StatusSuccess, logs.entries[0].Status)
	assert.Zero(t, logs.entries[0].SoftDeleted)
}

func TestPull_AllReadsFailingLeavesExistingRecordsActive(t *testing.T) {
	repo := newFakeShipmentRepo()
	require.NoError(t, repo.Create(context.Background(), &shipment.Shipment{ShipmentNo: "SHP-001"}))

	broken := planSheet("Week 1", 11, []string{"SHP-001", "Order A", "", ""})
	broken.readErr = errors.New("transient read failure")
	doc := &fakeDocument{worksheets: []*fakeWorksheet{broken}}
	svc := newPullService(&fakeOpener{doc: doc}, repo, &fakeSyncLogRepo{}, PullOptions{SpreadsheetID: "doc-1"})

	result, err := svc.Pull(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.SoftDeleted)
	assert.False(t, repo.records["SHP-001"].IsDeleted)
}

func TestPull_OpenFailureRecordsErrorLog(t *testing.T) {
	logs := &fakeSyncLogRepo{}
	svc := newPullService(&fakeOpener{err: errors.New("quota exceeded")}, newFakeShipmentRepo(), logs, PullOptions{SpreadsheetID: "doc-1"})

	_, err := svc.Pull(context.Background())
	require.Error(t, err)
	require.Len(t, logs.entries, 1)
	assert.Equal(t, synclog.StatusError, logs.entries[0].Status)
	require.NotNil(t, logs.entries[0].ErrorDetail)
	assert.Contains(t, *logs.entries[0].ErrorDetail, "quota exceeded")
}
