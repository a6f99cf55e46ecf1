package services

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/hexinli/JakartaBackend/modules/tracking/sheet"
	"github.com/hexinli/JakartaBackend/pkg/eventbus"
	"github.com/hexinli/JakartaBackend/pkg/gsheets"
	"github.com/hexinli/JakartaBackend/pkg/metrics"
)

// ErrNegativeThreshold rejects archive sweeps with a negative day threshold
// before any remote call is made.
var ErrNegativeThreshold = errors.New("archive threshold must be non-negative")

// archiveFlushLimit bounds the pending formatting requests per remote call.
const archiveFlushLimit = 90

// archiveHeaderRows is how many leading rows of a plan worksheet are headers;
// data starts on the row after them.
const archiveHeaderRows = 3

// archivedStyle is the visual treatment of an archived row: dimmed text,
// reduced size, the admin link.
var archivedStyle = gsheets.TextStyle{
	FontSize: 8,
	LinkURI:  sheet.NoteLinkURI,
	Foreground: &gsheets.Color{
		Red:   0.6,
		Green: 0.6,
		Blue:  0.6,
	},
}

// ArchivedRow is one audit entry of the sweep.
type ArchivedRow struct {
	SheetTitle string
	Row        int
	PlanDate   string
	Status     string
}

// ArchiveResult reports one archival sweep. MatchedRows counts rows that met
// the predicate; FormattedRows counts those actually formatted (a matched row
// on a zero-column sheet is skipped).
type ArchiveResult struct {
	ThresholdDate   time.Time
	MatchedRows     int
	FormattedRows   int
	SheetsProcessed []string
	AffectedRows    []ArchivedRow
}

// ArchiveConfig selects the plan worksheets the sweep scans.
type ArchiveConfig struct {
	SpreadsheetID   string
	PlanSheetPrefix string
	ExcludedTitles  []string
}

// ArchiveService dims rows whose plan date fell strictly before the threshold
// and whose delivery reached the terminal status.
type ArchiveService struct {
	opener    gsheets.Opener
	publisher eventbus.EventBus
	log       *logrus.Logger
	cfg       ArchiveConfig
	now       func() time.Time
}

func NewArchiveService(opener gsheets.Opener, publisher eventbus.EventBus, log *logrus.Logger, cfg ArchiveConfig) *ArchiveService {
	return &ArchiveService{
		opener:    opener,
		publisher: publisher,
		log:       log,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Sweep scans every plan worksheet once and applies the archived formatting
// to matching rows, flushing accumulated requests in bounded chunks. Rows
// whose plan date cannot be parsed are skipped, not errored.
func (s *ArchiveService) Sweep(ctx context.Context, thresholdDays int) (*ArchiveResult, error) {
	if thresholdDays < 0 {
		return nil, ErrNegativeThreshold
	}
	if s.cfg.SpreadsheetID == "" {
		return nil, ErrNoSpreadsheet
	}

	today := s.now().UTC().Truncate(24 * time.Hour)
	result := &ArchiveResult{ThresholdDate: today.AddDate(0, 0, -thresholdDays)}

	doc, err := s.opener.Open(ctx, s.cfg.SpreadsheetID)
	if err != nil {
		return nil, errors.Wrap(err, "open spreadsheet")
	}
	infos, err := doc.ListWorksheets(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "enumerate worksheets")
	}

	excluded := normalizedSet(s.cfg.ExcludedTitles)
	var pending []gsheets.Request
	var pendingRows int

	flush := func() {
		if len(pending) == 0 {
			return
		}
		if err := doc.BatchApply(ctx, pending); err != nil {
			s.log.WithError(err).Warn("archive: formatting flush failed, rows left unformatted")
		} else {
			result.FormattedRows += pendingRows
			metrics.ArchivedRows.Add(float64(pendingRows))
		}
		pending = pending[:0]
		pendingRows = 0
	}

	for _, info := range infos {
		if !eligibleTitle(info.Title, s.cfg.PlanSheetPrefix, excluded) {
			continue
		}
		ws, err := doc.Worksheet(ctx, info.Title)
		if err != nil {
			s.log.WithError(err).WithField("sheet", info.Title).Warn("archive: open worksheet failed, skipping")
			continue
		}
		values, err := ws.ReadAllValues(ctx)
		if err != nil {
			s.log.WithError(err).WithField("sheet", info.Title).Warn("archive: read worksheet failed, skipping")
			continue
		}
		result.SheetsProcessed = append(result.SheetsProcessed, info.Title)

		dateCol, statusCol := planColumns(values)
		if dateCol < 0 || statusCol < 0 {
			s.log.WithField("sheet", info.Title).Warn("archive: plan date or status column missing, skipping")
			continue
		}

		for i := archiveHeaderRows; i < len(values); i++ {
			row := values[i]
			if dateCol >= len(row) || statusCol >= len(row) {
				continue
			}
			planDate, ok := sheet.ParseDate(row[dateCol])
			if !ok {
				continue
			}
			status := strings.TrimSpace(row[statusCol])
			if !strings.EqualFold(status, sheet.TerminalStatus) {
				continue
			}
			// Strict "older than": a plan date on the threshold itself stays.
			if !planDate.Before(result.ThresholdDate) {
				continue
			}

			rowNum := i + 1
			result.MatchedRows++
			result.AffectedRows = append(result.AffectedRows, ArchivedRow{
				SheetTitle: info.Title,
				Row:        rowNum,
				PlanDate:   row[dateCol],
				Status:     status,
			})

			populated := len(row)
			if populated == 0 {
				populated = int(info.ColumnCount)
			}
			if populated == 0 {
				// Matched, but nothing to format on a zero-column sheet.
				continue
			}
			style := archivedStyle
			pending = append(pending, gsheets.Request{
				SheetID:  info.SheetID,
				StartRow: int64(rowNum - 1),
				EndRow:   int64(rowNum),
				StartCol: 0,
				EndCol:   int64(populated),
				Style:    &style,
			})
			pendingRows++
			if len(pending) >= archiveFlushLimit {
				flush()
			}
		}
	}
	flush()

	s.publisher.Publish(ArchiveCompletedEvent{Result: *result})
	s.log.WithFields(logrus.Fields{
		"threshold": result.ThresholdDate.Format("2006-01-02"),
		"matched":   result.MatchedRows,
		"formatted": result.FormattedRows,
		"sheets":    len(result.SheetsProcessed),
	}).Info("archival sweep completed")
	return result, nil
}

// planColumns finds the plan date and delivery status columns by scanning the
// header rows. Returns -1 for a column that never appears.
func planColumns(values [][]string) (dateCol, statusCol int) {
	dateCol, statusCol = -1, -1
	limit := archiveHeaderRows
	if len(values) < limit {
		limit = len(values)
	}
	dateHeader := sheet.HeaderForField(sheet.FieldPlanMOSDate)
	statusHeader := sheet.HeaderForField(sheet.FieldStatusDelivery)
	for r := 0; r < limit; r++ {
		for i, h := range sheet.NormalizeHeaders(values[r]) {
			switch h {
			case dateHeader:
				if dateCol < 0 {
					dateCol = i
				}
			case statusHeader:
				if statusCol < 0 {
					statusCol = i
				}
			}
		}
	}
	return dateCol, statusCol
}
