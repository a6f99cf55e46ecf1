package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/hexinli/JakartaBackend/modules/tracking/domain/entities/synclog"
	"github.com/hexinli/JakartaBackend/modules/tracking/infrastructure/persistence"
	"github.com/hexinli/JakartaBackend/pkg/composables"
)

type syncLogOutput struct {
	Status      string  `json:"status"`
	Created     int     `json:"created"`
	Updated     int     `json:"updated"`
	SoftDeleted int     `json:"soft_deleted"`
	Total       int     `json:"total"`
	Message     *string `json:"message,omitempty"`
	ErrorDetail *string `json:"error_detail,omitempty"`
	At          string  `json:"at"`
}

func newLogsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show recent pull-sync runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			repo := persistence.NewSyncLogRepository()
			var entries []*synclog.SyncLog
			err = composables.InTx(a.ctx(cmd.Context()), func(txCtx context.Context) error {
				entries, err = repo.List(txCtx, limit, 0)
				return err
			})
			if err != nil {
				return err
			}

			out := make([]syncLogOutput, 0, len(entries))
			for _, e := range entries {
				out = append(out, syncLogOutput{
					Status:      e.Status,
					Created:     e.Created,
					Updated:     e.Updated,
					SoftDeleted: e.SoftDeleted,
					Total:       e.Total,
					Message:     e.Message,
					ErrorDetail: e.ErrorDetail,
					At:          e.CreatedAt.Format(time.RFC3339),
				})
			}
			return writeJSON(out)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum entries to show")
	return cmd
}
