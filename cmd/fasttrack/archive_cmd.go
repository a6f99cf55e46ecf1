package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/hexinli/JakartaBackend/modules/tracking/services"
	"github.com/hexinli/JakartaBackend/pkg/configuration"
)

type archiveOutput struct {
	Command         string                 `json:"command"`
	DurationMS      int64                  `json:"duration_ms"`
	ThresholdDate   string                 `json:"threshold_date"`
	MatchedRows     int                    `json:"matched_rows"`
	FormattedRows   int                    `json:"formatted_rows"`
	SheetsProcessed []string               `json:"sheets_processed"`
	AffectedRows    []services.ArchivedRow `json:"affected_rows"`
}

func newArchiveCmd() *cobra.Command {
	var thresholdDays int

	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Dim delivered rows older than the threshold on plan worksheets",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			start := time.Now()
			result, err := a.archive.Sweep(cmd.Context(), thresholdDays)
			if err != nil {
				return err
			}
			return writeJSON(archiveOutput{
				Command:         "archive",
				DurationMS:      time.Since(start).Milliseconds(),
				ThresholdDate:   result.ThresholdDate.Format("2006-01-02"),
				MatchedRows:     result.MatchedRows,
				FormattedRows:   result.FormattedRows,
				SheetsProcessed: result.SheetsProcessed,
				AffectedRows:    result.AffectedRows,
			})
		},
	}

	cmd.Flags().IntVar(&thresholdDays, "days", configuration.Use().ArchiveDays, "Archive rows whose plan date is strictly older than this many days")
	return cmd
}
