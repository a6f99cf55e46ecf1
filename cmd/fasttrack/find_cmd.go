package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/hexinli/JakartaBackend/modules/tracking/domain/entities/shipment"
	"github.com/hexinli/JakartaBackend/modules/tracking/infrastructure/persistence"
	"github.com/hexinli/JakartaBackend/pkg/composables"
)

type foundShipment struct {
	ShipmentNo     string  `json:"shipment_no"`
	OrderName      *string `json:"order_name"`
	StatusDelivery *string `json:"status_delivery"`
	PlanMOSDate    *string `json:"plan_mos_date"`
	SheetTitle     *string `json:"sheet_title"`
	SheetRow       *int    `json:"sheet_row"`
}

func newFindCmd() *cobra.Command {
	var orderName string

	cmd := &cobra.Command{
		Use:   "find",
		Short: "Look up active shipments by order name",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			repo := persistence.NewShipmentRepository()
			var results []*shipment.Shipment
			err = composables.InTx(a.ctx(cmd.Context()), func(txCtx context.Context) error {
				results, err = repo.FindByOrderName(txCtx, orderName)
				return err
			})
			if err != nil {
				return err
			}

			out := make([]foundShipment, 0, len(results))
			for _, s := range results {
				out = append(out, foundShipment{
					ShipmentNo:     s.ShipmentNo,
					OrderName:      s.OrderName,
					StatusDelivery: s.StatusDelivery,
					PlanMOSDate:    s.PlanMOSDate,
					SheetTitle:     s.SheetTitle,
					SheetRow:       s.SheetRow,
				})
			}
			return writeJSON(out)
		},
	}

	cmd.Flags().StringVar(&orderName, "order", "", "Order name (exact, case-insensitive)")
	_ = cmd.MarkFlagRequired("order")
	return cmd
}
