package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nhle/taskdock/internal/app"
	"github.com/nhle/taskdock/internal/model"
	"github.com/nhle/taskdock/internal/store"
	"github.com/nhle/taskdock/internal/theme"
)

func categoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "category",
		Aliases: []string{"categories", "cat"},
		Short:   "Manage categories",
	}
	cmd.AddCommand(categoryAddCmd())
	cmd.AddCommand(categoryListCmd())
	cmd.AddCommand(categoryEditCmd())
	cmd.AddCommand(categoryDeleteCmd())
	return cmd
}

func categoryAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add [name]",
		Short: "Add a category",
		Args:  cobra.ExactArgs(1),
	}
	color := cmd.Flags().String("color", model.DefaultCategoryColor, "Color as #RRGGBB")

	cmd.RunE = withApp(func(cmd *cobra.Command, args []string) error {
		id, err := current.Store.AddCategory(cmd.Context(), args[0], *color)
		if err != nil {
			return err
		}
		fmt.Println(shortID(id))
		return nil
	})
	return cmd
}

func categoryListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List categories with their open task counts",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cats, err := current.Store.QueryCategories(ctx, store.CategoryFilter{})
			if err != nil {
				return err
			}
			if len(cats) == 0 {
				fmt.Println(theme.HelpStyle.Render("No categories"))
				return nil
			}
			for _, c := range cats {
				open, err := current.Store.CountTasks(ctx, store.TaskFilter{}.Incomplete().InCategory(c.ID))
				if err != nil {
					return err
				}
				fmt.Printf("%s %s %d open\n", shortID(c.ID), theme.CategoryStyle(c).Render(c.Name), open)
			}
			return nil
		}),
	}
}

func categoryEditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit [name-or-id]",
		Short: "Rename or recolor a category",
		Args:  cobra.ExactArgs(1),
	}
	name := cmd.Flags().String("name", "", "New name")
	color := cmd.Flags().String("color", "", "New color as #RRGGBB")

	cmd.RunE = withApp(func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		id, err := app.ResolveCategory(ctx, current.Store, args[0])
		if err != nil {
			return err
		}
		var u model.CategoryUpdate
		if cmd.Flags().Changed("name") {
			u.Name = name
		}
		if cmd.Flags().Changed("color") {
			u.ColorHex = color
		}
		_, err = current.Store.UpdateCategory(ctx, id, u)
		return err
	})
	return cmd
}

func categoryDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [name-or-id]",
		Short: "Delete a category; its tasks become uncategorized",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := app.ResolveCategory(ctx, current.Store, args[0])
			if err != nil {
				return err
			}
			_, err = current.Store.DeleteRecord(ctx, model.EntityCategory, id)
			return err
		}),
	}
}
