package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nhle/taskdock/internal/app"
	"github.com/nhle/taskdock/internal/model"
	"github.com/nhle/taskdock/internal/ui/widgetview"
	"github.com/nhle/taskdock/internal/widget"
)

var Version = "dev"

func main() {
	var (
		cfgPath string
		link    string
		watch   bool
	)

	rootCmd := &cobra.Command{
		Use:           "taskdock-widget",
		Short:         "Print the taskdock widget snapshot",
		Version:       Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := model.LoadConfig(cfgPath)
			if err != nil {
				return err
			}
			app.ConfigureLogging(cfg.Log.Level)

			dest, err := widget.ResolveDestination(link)
			if err != nil {
				return err
			}

			// The widget never opens the store writable, so it never
			// migrates and never falls back to a local store.
			p := widget.NewProvider(model.SharedStorePath(cfg.Store.SharedRoot), cfg.Widget.Limit)
			if !watch {
				fmt.Println(widget.Render(p.Snapshot(cmd.Context(), time.Now()), dest))
				return nil
			}
			return runTimeline(cmd.Context(), p, dest, time.Duration(cfg.Widget.RefreshMinutes)*time.Minute)
		},
	}
	rootCmd.Flags().StringVar(&cfgPath, "config", model.DefaultConfigPath(), "Config file path")
	rootCmd.Flags().StringVarP(&link, "link", "l", widget.DestToday.URL(), "Widget deep link (taskdock://today, taskdock://priority, taskdock://newTask)")
	rootCmd.Flags().BoolVarP(&watch, "watch", "w", false, "Open the interactive view and redraw on every refresh")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runTimeline runs the interactive view until the user quits. SIGHUP forces
// a refresh.
func runTimeline(ctx context.Context, p *widget.Provider, dest widget.Destination, every time.Duration) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	tl := widget.NewTimeline(p, every, nil)
	tl.Start()
	defer tl.Stop()

	go relayRefresh(ctx, hup, tl.Trigger)

	_, err := tea.NewProgram(widgetview.New(tl, dest), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// relayRefresh calls trigger for every signal on sig until ctx is done.
func relayRefresh(ctx context.Context, sig <-chan os.Signal, trigger func()) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-sig:
			trigger()
		}
	}
}
