package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"pdao-records/internal/app"
	"pdao-records/internal/domain"
	"pdao-records/internal/job"
)

type appFactory func() (*app.App, error)

func newRootCmd(newApp appFactory, clock func() time.Time) *cobra.Command {
	root := &cobra.Command{
		Use:           "jobs",
		Short:         "Card lifecycle batch jobs and review actions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		renewalsCheckCmd(newApp, clock),
		archiveExpiredCmd(newApp, clock),
		qrRegenerateCmd(newApp),
		reviewCmd(newApp, "renewals:approve", true),
		reviewCmd(newApp, "renewals:reject", false),
	)
	return root
}

// withApp builds the app for one command and closes it afterwards.
func withApp(newApp appFactory, run func(a *app.App) error) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()
	return run(a)
}

func parseAt(at string, clock func() time.Time) (time.Time, error) {
	now := clock()
	if at == "" {
		return now, nil
	}
	t, err := time.ParseInLocation("2006-01-02", at, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("--at must be YYYY-MM-DD: %w", err)
	}
	return t, nil
}

func renewalsCheckCmd(newApp appFactory, clock func() time.Time) *cobra.Command {
	var at string
	cmd := &cobra.Command{
		Use:   "renewals:check",
		Short: "Create renewal-due and ready-to-claim notifications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			now, err := parseAt(at, clock)
			if err != nil {
				return err
			}
			return withApp(newApp, func(a *app.App) error {
				res, err := a.Reminder.Run(cmd.Context(), now)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created %d notification(s) (%d failed)\n", res.NotificationsCreated, res.Failed)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "run as of this date (YYYY-MM-DD) instead of today")
	return cmd
}

func archiveExpiredCmd(newApp appFactory, clock func() time.Time) *cobra.Command {
	var at string
	cmd := &cobra.Command{
		Use:   "members:archive-expired",
		Short: "Archive claimed cards past their expiration date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			now, err := parseAt(at, clock)
			if err != nil {
				return err
			}
			return withApp(newApp, func(a *app.App) error {
				res, err := a.Archival.Run(cmd.Context(), now)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Archived %d card(s) (%d failed)\n", res.Archived, res.Failed)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "run as of this date (YYYY-MM-DD) instead of today")
	return cmd
}

func qrRegenerateCmd(newApp appFactory) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "qr:regenerate",
		Short: "Rewrite stored QR payloads in the current schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(newApp, func(a *app.App) error {
				res, err := a.QRMigration.Run(cmd.Context(), job.ParseQRMode(all))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Regenerated %d, skipped %d, errors %d\n", res.Regenerated, res.Skipped, res.Errors)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "regenerate every payload, not only legacy ones")
	return cmd
}

func reviewCmd(newApp appFactory, use string, approve bool) *cobra.Command {
	var reviewer, notes string
	cmd := &cobra.Command{
		Use:   use + " <id>",
		Short: "Review a pending renewal request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid renewal request id: %w", err)
			}
			reviewerID, err := uuid.Parse(reviewer)
			if err != nil {
				return fmt.Errorf("--reviewer must be a user id: %w", err)
			}

			var notesPtr *string
			if cmd.Flags().Changed("notes") {
				notesPtr = &notes
			}

			return withApp(newApp, func(a *app.App) error {
				var req *domain.RenewalRequest
				if approve {
					req, err = a.Services.Renewal.Approve(cmd.Context(), id, reviewerID, notesPtr)
				} else {
					req, err = a.Services.Renewal.Reject(cmd.Context(), id, reviewerID, notesPtr)
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Renewal request %s is now %s\n", req.ID, req.Status)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&reviewer, "reviewer", "", "reviewer user id")
	cmd.Flags().StringVar(&notes, "notes", "", "review notes (required to reject)")
	_ = cmd.MarkFlagRequired("reviewer")
	if !approve {
		_ = cmd.MarkFlagRequired("notes")
	}
	return cmd
}
