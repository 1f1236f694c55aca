package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/chris/store-payments/pkg/orders"
	"github.com/spf13/cobra"
)

// operator is the part of the order service exposed to operators.
type operator interface {
	Inspect(ctx context.Context, externalOrderID string) (*orders.StatusReport, error)
	RefreshStatus(ctx context.Context, externalOrderID, source string) (*orders.ReconcileResult, error)
	ReconcileStale(ctx context.Context, maxAge time.Duration) (*orders.SweepResult, error)
}

const defaultSweepAge = 30 * time.Minute

// builder wires an operator and returns a func that releases it.
type builder func(ctx context.Context) (operator, func() error, error)

func newRootCmd(build builder) *cobra.Command {
	var (
		op      operator
		release func() error
	)

	root := &cobra.Command{
		Use:           "storectl",
		Short:         "Inspect and reconcile store payments",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			op, release, err = build(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to initialise: %w", err)
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if release == nil {
				return nil
			}
			return release()
		},
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "status <external-order-id>",
			Short: "Print the stored and gateway status of an order",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				report, err := op.Inspect(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				printReport(cmd.OutOrStdout(), report)
				return nil
			},
		},
		&cobra.Command{
			Use:   "reconcile <external-order-id>",
			Short: "Query the gateway and reconcile an order",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				result, err := op.RefreshStatus(cmd.Context(), args[0], orders.SourceOperator)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "order %s: %s (%s)\n",
					result.Order.ExternalOrderId, result.Status, result.Outcome)
				return nil
			},
		},
		newSweepCmd(&op),
	)

	return root
}

func newSweepCmd(op *operator) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Reconcile every order still pending after --older-than",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThan <= 0 {
				return fmt.Errorf("--older-than must be positive")
			}
			result, err := (*op).ReconcileStale(cmd.Context(), olderThan)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "found %d, reconciled %d, failed %d\n",
				result.Found, result.Handled, result.Failed)
			if result.Failed > 0 {
				return fmt.Errorf("%d orders could not be reconciled", result.Failed)
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", defaultSweepAge, "minimum age of pending orders to reconcile")
	return cmd
}

func printReport(w io.Writer, report *orders.StatusReport) {
	o := report.Order
	fmt.Fprintf(w, "order:          %s (%s)\n", o.ExternalOrderId, o.Id)
	fmt.Fprintf(w, "store:          %s\n", o.StoreId)
	fmt.Fprintf(w, "total:          %d\n", o.TotalAmount)
	fmt.Fprintf(w, "payment_status: %s\n", o.PaymentStatus)
	fmt.Fprintf(w, "created_at:     %s\n", o.CreatedAt.Format(time.RFC3339))
	if report.Gateway == nil {
		fmt.Fprintln(w, "gateway:        no transaction yet")
		return
	}
	g := report.Gateway
	fmt.Fprintf(w, "gateway:        %s", g.TransactionStatus)
	if g.FraudStatus != "" {
		fmt.Fprintf(w, " (fraud: %s)", g.FraudStatus)
	}
	fmt.Fprintln(w)
	if g.PaymentType != "" {
		fmt.Fprintf(w, "payment_type:   %s\n", g.PaymentType)
	}
	fmt.Fprintf(w, "gross_amount:   %d\n", g.GrossAmount)
}
