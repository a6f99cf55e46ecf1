package main

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hexinli/JakartaBackend/modules/tracking/infrastructure/persistence"
	"github.com/hexinli/JakartaBackend/modules/tracking/services"
	"github.com/hexinli/JakartaBackend/pkg/composables"
	"github.com/hexinli/JakartaBackend/pkg/configuration"
	"github.com/hexinli/JakartaBackend/pkg/eventbus"
	"github.com/hexinli/JakartaBackend/pkg/gsheets"
)

// app bundles the wired services for one command invocation.
type app struct {
	conf      *configuration.Configuration
	pool      *pgxpool.Pool
	publisher eventbus.EventBus
	pull      *services.PullService
	writeBack *services.WriteBackService
	archive   *services.ArchiveService
}

func newApp(ctx context.Context) (*app, error) {
	conf := configuration.Use()
	logger := conf.Logger()

	dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	pool, err := pgxpool.New(dialCtx, conf.Database.Opts)
	if err != nil {
		return nil, err
	}

	opener := gsheets.NewClient(gsheets.ClientOptions{
		CredentialsPath: conf.Sheets.CredentialsPath,
		CredentialsJSON: conf.Sheets.CredentialsJSON,
	})
	publisher := eventbus.NewEventPublisher(logger)
	shipments := persistence.NewShipmentRepository()
	syncLogs := persistence.NewSyncLogRepository()

	return &app{
		conf:      conf,
		pool:      pool,
		publisher: publisher,
		pull: services.NewPullService(opener, shipments, syncLogs, publisher, composables.InTx, logger, services.PullOptions{
			SpreadsheetID:   conf.Sheets.SpreadsheetID,
			PlanSheetPrefix: conf.Sheets.PlanSheetPrefix,
			ExcludedTitles:  conf.Sheets.ExcludedTitles(),
			HeaderRow:       conf.Sheets.HeaderRow,
		}),
		writeBack: services.NewWriteBackService(opener, shipments, publisher, composables.InTx, logger, services.WriteBackConfig{
			SpreadsheetID:  conf.Sheets.SpreadsheetID,
			FallbackSheet:  conf.Sheets.FallbackSheet,
			ExcludedTitles: conf.Sheets.ExcludedTitles(),
			HeaderRow:      conf.Sheets.HeaderRow,
		}),
		archive: services.NewArchiveService(opener, publisher, logger, services.ArchiveConfig{
			SpreadsheetID:   conf.Sheets.SpreadsheetID,
			PlanSheetPrefix: conf.Sheets.PlanSheetPrefix,
			ExcludedTitles:  conf.Sheets.ExcludedTitles(),
		}),
	}, nil
}

// ctx returns a context carrying the database pool for repository access.
func (a *app) ctx(ctx context.Context) context.Context {
	return composables.WithPool(ctx, a.pool)
}

func (a *app) close() {
	a.pool.Close()
	a.conf.Unload()
}
