package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nhle/taskdock/internal/theme"
)

func noteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "note",
		Aliases: []string{"notes"},
		Short:   "Jot down and review brain-dump notes",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add [text]",
		Short: "Add a note",
		Args:  cobra.MinimumNArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string) error {
			id, err := current.Store.AddNote(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Println(shortID(id))
			return nil
		}),
	})

	list := &cobra.Command{
		Use:   "list",
		Short: "List notes, newest first",
		Args:  cobra.NoArgs,
	}
	limit := list.Flags().IntP("limit", "n", 20, "Maximum results")
	list.RunE = withApp(func(cmd *cobra.Command, args []string) error {
		notes, err := current.Store.ListNotes(cmd.Context(), *limit)
		if err != nil {
			return err
		}
		if len(notes) == 0 {
			fmt.Println(theme.HelpStyle.Render("No notes"))
			return nil
		}
		for _, n := range notes {
			fmt.Printf("%s %s %s\n", n.ID, theme.HelpStyle.Render(n.DateModified.Local().Format("Jan 2 15:04")), n.Content)
		}
		return nil
	})
	cmd.AddCommand(list)

	cmd.AddCommand(&cobra.Command{
		Use:   "edit [id] [text]",
		Short: "Replace a note's text",
		Args:  cobra.MinimumNArgs(2),
		RunE: withApp(func(cmd *cobra.Command, args []string) error {
			found, err := current.Store.UpdateNote(cmd.Context(), args[0], strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("no note with id %s", args[0])
			}
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a note",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string) error {
			found, err := current.Store.DeleteNote(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("no note with id %s", args[0])
			}
			return nil
		}),
	})

	return cmd
}
