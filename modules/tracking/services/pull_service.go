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
	"github.com/hexinli/JakartaBackend/pkg/metrics"
)

// ErrNoSpreadsheet is the fatal precondition for remote operations: the
// spreadsheet locator is unconfigured. No remote call is made when it fires.
var ErrNoSpreadsheet = errors.New("spreadsheet id is not configured")

// PullResult reports one pull-sync run. Counts are computed by set difference
// against the pre-upsert snapshot of identity keys, so they stay well-defined
// under the diff-gated update policy.
type PullResult struct {
	Created     int
	Updated     int
	SoftDeleted int
	Total       int
}

// PullOptions selects which worksheets participate in a pull.
type PullOptions struct {
	SpreadsheetID   string
	PlanSheetPrefix string
	ExcludedTitles  []string
	HeaderRow       int
}

// PullService mirrors all eligible worksheets into the shipments table:
// diff-aware upsert plus soft-delete of vanished rows.
type PullService struct {
	opener    gsheets.Opener
	shipments shipment.Repository
	syncLogs  synclog.Repository
	publisher eventbus.EventBus
	inTx      TxRunner
	log       *logrus.Logger
	opts      PullOptions
}

func NewPullService(
	opener gsheets.Opener,
	shipments shipment.Repository,
	syncLogs synclog.Repository,
	publisher eventbus.EventBus,
	inTx TxRunner,
	log *logrus.Logger,
	opts PullOptions,
) *PullService {
	if opts.HeaderRow < 1 {
		opts.HeaderRow = 1
	}
	return &PullService{
		opener:    opener,
		shipments: shipments,
		syncLogs:  syncLogs,
		publisher: publisher,
		inTx:      inTx,
		log:       log,
		opts:      opts,
	}
}

// Pull runs one full pull-sync. A missing spreadsheet id fails before any
// remote call; per-worksheet read failures are logged and skipped. An empty
// source yields an all-zero result, not an error.
func (s *PullService) Pull(ctx context.Context) (PullResult, error) {
	if s.opts.SpreadsheetID == "" {
		return PullResult{}, ErrNoSpreadsheet
	}

	rows, err := s.collect(ctx)
	if err != nil {
		metrics.PullRuns.WithLabelValues("error").Inc()
		s.recordFailure(ctx, err)
		s.publisher.Publish(PullCompletedEvent{Err: err})
		return PullResult{}, err
	}

	result, err := s.reconcile(ctx, rows)
	if err != nil {
		metrics.PullRuns.WithLabelValues("error").Inc()
		s.recordFailure(ctx, err)
		s.publisher.Publish(PullCompletedEvent{Err: err})
		return PullResult{}, err
	}

	metrics.PullRuns.WithLabelValues("success").Inc()
	metrics.PullRowsUpserted.Add(float64(result.Created + result.Updated))
	metrics.PullRowsSoftDeleted.Add(float64(result.SoftDeleted))
	s.publisher.Publish(PullCompletedEvent{Result: result})
	s.log.WithFields(logrus.Fields{
		"created":      result.Created,
		"updated":      result.Updated,
		"soft_deleted": result.SoftDeleted,
		"total":        result.Total,
	}).Info("pull-sync completed")
	return result, nil
}

// collect reads every eligible worksheet once and maps its rows to canonical
// records with provenance attached. Duplicated identity keys are resolved
// last occurrence wins.
func (s *PullService) collect(ctx context.Context) ([]*shipment.Shipment, error) {
	doc, err := s.opener.Open(ctx, s.opts.SpreadsheetID)
	if err != nil {
		return nil, errors.Wrap(err, "open spreadsheet")
	}
	infos, err := doc.ListWorksheets(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "enumerate worksheets")
	}

	excluded := normalizedSet(s.opts.ExcludedTitles)
	byKey := make(map[string]*shipment.Shipment)
	var order []string

	for _, info := range infos {
		if !eligibleTitle(info.Title, s.opts.PlanSheetPrefix, excluded) {
			continue
		}
		ws, err := doc.Worksheet(ctx, info.Title)
		if err != nil {
			s.log.WithError(err).WithField("sheet", info.Title).Warn("pull: open worksheet failed, skipping")
			continue
		}
		values, err := ws.ReadAllValues(ctx)
		if err != nil {
			s.log.WithError(err).WithField("sheet", info.Title).Warn("pull: read worksheet failed, skipping")
			continue
		}
		if len(values) < s.opts.HeaderRow+1 {
			continue
		}

		headers := sheet.NormalizeHeaders(values[s.opts.HeaderRow-1])
		idCol := findIdentityColumn(headers)
		if idCol < 0 {
			s.log.WithField("sheet", info.Title).Warn("pull: no identity column, skipping")
			continue
		}

		for i, row := range values[s.opts.HeaderRow:] {
			if sheet.RowIsBlank(row) {
				continue
			}
			payload := sheet.MapRow(headers, row)
			rawKey := payload[sheet.FieldShipmentNo]
			if rawKey == nil {
				continue
			}
			key := sheet.NormalizeIdentity(*rawKey)
			if key == "" {
				continue
			}

			rowNum := s.opts.HeaderRow + 1 + i
			rec := &shipment.Shipment{ShipmentNo: key}
			for _, f := range sheet.MappedFields {
				if f == sheet.FieldShipmentNo {
					continue
				}
				rec.SetField(f, payload[f])
			}
			title := info.Title
			cell := gsheets.RowColToA1(rowNum, idCol+1)
			rec.SheetTitle = &title
			rec.SheetRow = &rowNum
			rec.SheetCell = &cell

			if _, seen := byKey[key]; !seen {
				order = append(order, key)
			}
			byKey[key] = rec
		}
	}

	rows := make([]*shipment.Shipment, 0, len(order))
	for _, key := range order {
		rows = append(rows, byKey[key])
	}
	return rows, nil
}

// reconcile applies collected rows to the database in one transaction:
// snapshot, upsert, soft-delete sweep, counts, sync log. An empty collection
// short-circuits before the sweep: a source that yielded no usable rows
// (every sheet unreadable, renamed, or blank) must never mass soft-delete
// the table.
func (s *PullService) reconcile(ctx context.Context, rows []*shipment.Shipment) (PullResult, error) {
	var result PullResult
	if len(rows) == 0 {
		err := s.inTx(ctx, func(txCtx context.Context) error {
			message := "no usable rows collected"
			return s.syncLogs.Create(txCtx, &synclog.SyncLog{
				Status:  synclog.StatusSuccess,
				Message: &message,
			})
		})
		return result, err
	}
	err := s.inTx(ctx, func(txCtx context.Context) error {
		existing, err := s.shipments.ExistingKeys(txCtx)
		if err != nil {
			return errors.Wrap(err, "snapshot existing keys")
		}
		known := make(map[string]struct{}, len(existing))
		for _, k := range existing {
			known[k.ShipmentNo] = struct{}{}
		}

		if err := s.shipments.BulkUpsert(txCtx, rows); err != nil {
			return errors.Wrap(err, "bulk upsert")
		}

		seen := make([]string, 0, len(rows))
		for _, r := range rows {
			seen = append(seen, r.ShipmentNo)
			if _, ok := known[r.ShipmentNo]; ok {
				result.Updated++
			} else {
				result.Created++
			}
		}
		deleted, err := s.shipments.SoftDeleteMissing(txCtx, seen)
		if err != nil {
			return errors.Wrap(err, "soft-delete sweep")
		}
		result.SoftDeleted = int(deleted)
		result.Total = len(rows)

		message := fmt.Sprintf("created=%d updated=%d soft_deleted=%d", result.Created, result.Updated, result.SoftDeleted)
		return s.syncLogs.Create(txCtx, &synclog.SyncLog{
			Status:      synclog.StatusSuccess,
			Created:     result.Created,
			Updated:     result.Updated,
			SoftDeleted: result.SoftDeleted,
			Total:       result.Total,
			Message:     &message,
		})
	})
	return result, err
}

// recordFailure writes an error sync log entry. Best effort: a failure to log
// the failure is itself only logged.
func (s *PullService) recordFailure(ctx context.Context, cause error) {
	detail := cause.Error()
	err := s.inTx(ctx, func(txCtx context.Context) error {
		return s.syncLogs.Create(txCtx, &synclog.SyncLog{
			Status:      synclog.StatusError,
			ErrorDetail: &detail,
		})
	})
	if err != nil {
		s.log.WithError(err).Error("pull: failed to record sync failure")
	}
	s.log.WithError(cause).Error("pull-sync failed")
}

// LatestLog returns the most recent sync log entry, nil when none exists.
func (s *PullService) LatestLog(ctx context.Context) (*synclog.SyncLog, error) {
	var latest *synclog.SyncLog
	err := s.inTx(ctx, func(txCtx context.Context) error {
		var err error
		latest, err = s.syncLogs.Latest(txCtx)
		return err
	})
	return latest, err
}
