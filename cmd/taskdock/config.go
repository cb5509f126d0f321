package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nhle/taskdock/internal/model"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or initialise the configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := model.LoadConfig(cfgPath)
			if err != nil {
				return err
			}
			fmt.Printf("Config:        %s\n", cfgPath)
			fmt.Printf("Shared store:  %s\n", model.SharedStorePath(cfg.Store.SharedRoot))
			fmt.Printf("Local store:   %s\n", model.LocalStorePath(cfg.Store.LocalDir))
			fmt.Printf("Strict cats:   %t\n", cfg.Store.StrictCategories)
			fmt.Printf("Grace:         %s\n", cfg.Reminders.Grace())
			fmt.Printf("Widget limit:  %d\n", cfg.Widget.Limit)
			fmt.Printf("Widget every:  %dm\n", cfg.Widget.RefreshMinutes)
			fmt.Printf("Notify every:  %ds\n", cfg.Notify.PollSeconds)
			fmt.Printf("Log level:     %s\n", cfg.Log.Level)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write the default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := model.SaveConfig(cfgPath, model.DefaultAppConfig()); err != nil {
				return err
			}
			fmt.Printf("Wrote %s\n", cfgPath)
			return nil
		},
	})

	return cmd
}
