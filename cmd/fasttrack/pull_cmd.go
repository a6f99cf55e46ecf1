package main

import (
	"time"

	"github.com/spf13/cobra"
)

type pullOutput struct {
	Command     string `json:"command"`
	DurationMS  int64  `json:"duration_ms"`
	Created     int    `json:"created"`
	Updated     int    `json:"updated"`
	SoftDeleted int    `json:"soft_deleted"`
	Total       int    `json:"total"`
}

func newPullCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pull",
		Short: "Mirror all eligible worksheets into the shipments table",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			start := time.Now()
			result, err := a.pull.Pull(a.ctx(cmd.Context()))
			if err != nil {
				return err
			}
			return writeJSON(pullOutput{
				Command:     "pull",
				DurationMS:  time.Since(start).Milliseconds(),
				Created:     result.Created,
				Updated:     result.Updated,
				SoftDeleted: result.SoftDeleted,
				Total:       result.Total,
			})
		},
	}
}
