package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nhle/taskdock/internal/app"
	"github.com/nhle/taskdock/internal/model"
	"github.com/nhle/taskdock/internal/ui"
)

var Version = "dev"

var (
	cfgPath string
	current *app.App
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "taskdock",
		Short:         "taskdock - tasks, categories and reminders in a shared store",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", model.DefaultConfigPath(), "Config file path")

	rootCmd.AddCommand(addCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(doneCmd())
	rootCmd.AddCommand(editCmd())
	rootCmd.AddCommand(deleteCmd())
	rootCmd.AddCommand(clearCompletedCmd())
	rootCmd.AddCommand(resetCmd())
	rootCmd.AddCommand(categoryCmd())
	rootCmd.AddCommand(noteCmd())
	rootCmd.AddCommand(remindCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// withApp wraps a RunE so it runs against an opened App that is closed
// afterwards.
func withApp(run func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := app.Open(cfgPath, app.Options{Prompt: ui.NotificationPrompt()})
		if err != nil {
			return err
		}
		defer a.Close()

		current = a
		return run(cmd, args)
	}
}
