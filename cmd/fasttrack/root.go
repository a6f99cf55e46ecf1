package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hexinli/JakartaBackend/pkg/logging"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "fasttrack",
		Short:         "Spreadsheet-database reconciliation engine for shipment tracking",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newPullCmd())
	cmd.AddCommand(newWriteBackCmd())
	cmd.AddCommand(newArchiveCmd())
	cmd.AddCommand(newFindCmd())
	cmd.AddCommand(newLogsCmd())
	cmd.AddCommand(newServeCmd())
	return cmd
}

func execute() {
	if err := newRootCmd().Execute(); err != nil {
		logging.ConsoleLogger(logrus.ErrorLevel).Error(err)
		os.Exit(1)
	}
}
