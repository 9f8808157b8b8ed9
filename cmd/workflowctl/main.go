// Command workflowctl runs operator tasks against the workflow database
// without going through the HTTP API.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/onegreenvn/booking-followup-backend/internal/config"
	"github.com/onegreenvn/booking-followup-backend/internal/database"
	"github.com/onegreenvn/booking-followup-backend/internal/services"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type app struct {
	cfg  *config.Config
	svcs *services.Services
	mq   *services.RabbitMQService
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	a := &app{cfg: config.Load()}

	root := &cobra.Command{
		Use:           "workflowctl",
		Short:         "Operate booking follow-up workflows",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level, err := logrus.ParseLevel(a.cfg.LogLevel)
			if err != nil {
				level = logrus.InfoLevel
			}
			logrus.SetLevel(level)
			logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if a.mq != nil {
				a.mq.Close()
			}
		},
	}

	root.AddCommand(
		newBookingsByStatusCommand(a),
		newBackfillCommand(a),
		newStatsCommand(a),
		newDispatchDueCommand(a),
	)
	return root
}

// open connects to the database, and to RabbitMQ when withDispatcher is set
func (a *app) open(withDispatcher bool) error {
	db, err := database.InitDB(a.cfg.Database)
	if err != nil {
		return err
	}

	var dispatcher services.Dispatcher
	if withDispatcher {
		mq, err := services.NewRabbitMQService(a.cfg.RabbitMQ, a.cfg.RabbitMQ.WorkflowMessagesQueue)
		if err != nil {
			return err
		}
		a.mq = mq
		dispatcher = services.NewAMQPDispatcher(mq, a.cfg.RabbitMQ.WorkflowMessagesQueue)
	}

	a.svcs = services.New(db, dispatcher, services.Options{
		DispatchLease:       a.cfg.Dispatch.Lease,
		DispatchBatchSize:   a.cfg.Dispatch.BatchSize,
		BackfillConcurrency: a.cfg.BackfillConcurrency,
	})
	return nil
}

func newBookingsByStatusCommand(a *app) *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "bookings-by-status --status <status>",
		Short: "Show which bookings in a status already have scheduled workflows",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.open(false); err != nil {
				return err
			}
			resp, err := a.svcs.Backfill.BookingsByStatus(cmd.Context(), status)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "booking status (no-show, completed, canceled, rescheduled)")
	cmd.MarkFlagRequired("status")
	return cmd
}

func newBackfillCommand(a *app) *cobra.Command {
	var (
		status       string
		skipExisting bool
	)
	cmd := &cobra.Command{
		Use:   "backfill --status <status>",
		Short: "Schedule workflows for bookings that missed their live trigger",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.open(false); err != nil {
				return err
			}
			result, err := a.svcs.Backfill.TriggerByStatus(cmd.Context(), status, skipExisting)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "booking status (no-show, completed, canceled, rescheduled)")
	cmd.Flags().BoolVar(&skipExisting, "skip-existing", true, "only schedule bookings without entries for the trigger")
	cmd.MarkFlagRequired("status")
	return cmd
}

func newStatsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print workflow log counts per status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.open(false); err != nil {
				return err
			}
			stats, err := a.svcs.Logs.Stats(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), stats)
		},
	}
}

func newDispatchDueCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dispatch-due",
		Short: "Dispatch every scheduled entry that is due now, once",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.open(true); err != nil {
				return err
			}
			stats, err := a.svcs.Dispatch.RunDue(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), stats)
		},
	}
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
