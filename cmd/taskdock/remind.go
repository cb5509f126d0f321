package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/nhle/taskdock/internal/model"
	"github.com/nhle/taskdock/internal/theme"
)

var errRemindersUnavailable = errors.New("reminders are not available for this store")

func remindCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "remind",
		Aliases: []string{"reminders"},
		Short:   "Manage reminder notifications",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "enable",
		Short: "Allow reminder notifications",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, args []string) error {
			if current.Scheduler == nil {
				return errRemindersUnavailable
			}
			granted, err := current.Scheduler.RequestAuthorization(cmd.Context())
			if err != nil {
				return err
			}
			if !granted {
				// An earlier "disable" is stored; override it explicitly.
				if err := current.Notifier.SetAuthorization(cmd.Context(), true); err != nil {
					return err
				}
			}
			n, err := current.ReconcileReminders(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Reminders enabled (%d task(s) checked)\n", n)
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "disable",
		Short: "Stop scheduling reminder notifications",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, args []string) error {
			if current.Notifier == nil {
				return errRemindersUnavailable
			}
			if err := current.Notifier.SetAuthorization(cmd.Context(), false); err != nil {
				return err
			}
			fmt.Println("Reminders disabled")
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "pending",
		Short: "List scheduled reminders",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, args []string) error {
			if current.Notifier == nil {
				return errRemindersUnavailable
			}
			pending, err := current.Notifier.Pending(cmd.Context())
			if err != nil {
				return err
			}
			if len(pending) == 0 {
				fmt.Println(theme.HelpStyle.Render("No pending reminders"))
			}
			for _, n := range pending {
				fmt.Printf("%s %s\n", theme.HelpStyle.Render(n.FireAt.Local().Format("Mon Jan 2 15:04:05")), n.Title)
			}
			return nil
		}),
	})

	dispatch := &cobra.Command{
		Use:   "dispatch",
		Short: "Deliver due reminders",
		Args:  cobra.NoArgs,
	}
	watch := dispatch.Flags().BoolP("watch", "w", false, "Keep running and deliver reminders as they come due")
	dispatch.RunE = withApp(func(cmd *cobra.Command, args []string) error {
		d := current.Dispatcher(terminalDeliverer{}, nil)
		if d == nil {
			return errRemindersUnavailable
		}
		if !*watch {
			_, err := d.DeliverDue(cmd.Context())
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		d.Start()
		defer d.Stop()
		log.Info().Int("poll_seconds", current.Config.Notify.PollSeconds).Msg("dispatching reminders")

		for {
			select {
			case <-ctx.Done():
				return nil
			case r := <-d.Results():
				if r.Error != nil {
					log.Error().Err(r.Error).Msg("reminder dispatch pass failed")
				}
			}
		}
	})
	cmd.AddCommand(dispatch)

	return cmd
}

// terminalDeliverer prints reminders to stdout.
type terminalDeliverer struct{}

func (terminalDeliverer) Deliver(_ context.Context, n model.Notification) error {
	_, err := fmt.Println(theme.HeaderStyle.Render("Reminder") + " " + n.Title + " " + theme.HelpStyle.Render(n.Body))
	return err
}
