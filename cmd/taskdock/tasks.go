package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nhle/taskdock/internal/app"
	"github.com/nhle/taskdock/internal/model"
	"github.com/nhle/taskdock/internal/store"
	"github.com/nhle/taskdock/internal/theme"
	"github.com/nhle/taskdock/internal/ui"
)

func addCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
	}
	desc := cmd.Flags().StringP("desc", "d", "", "Description")
	due := cmd.Flags().String("due", "", "Due date (today, tomorrow, 2006-01-02, 2006-01-02 15:04)")
	priority := cmd.Flags().StringP("priority", "p", "medium", "Priority (low, medium, high)")
	category := cmd.Flags().StringP("category", "c", "", "Category name or ID")
	remind := cmd.Flags().String("remind", "none", "Reminder (none, atTime, -15m, -1h, -1d, custom)")
	offset := cmd.Flags().Int64("remind-offset", 0, "Custom reminder offset in seconds relative to the due date")

	cmd.RunE = withApp(func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		fields := model.TaskFields{
			Title:                strings.Join(args, " "),
			Description:          *desc,
			Priority:             model.Priority(*priority),
			ReminderType:         model.ReminderType(*remind),
			CustomReminderOffset: *offset,
		}
		if *due != "" {
			t, err := app.ParseDue(*due, time.Now(), time.Local)
			if err != nil {
				return err
			}
			fields.DueDate = &t
		}
		if *category != "" {
			id, err := app.ResolveCategory(ctx, current.Store, *category)
			if err != nil && current.Config.Store.StrictCategories {
				return err
			}
			if err != nil {
				id = *category
			}
			fields.CategoryID = &id
		}

		id, err := current.Store.AddTask(ctx, fields)
		if err != nil {
			return err
		}
		fmt.Println(shortID(id))
		return nil
	})
	return cmd
}

func listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Args:  cobra.NoArgs,
	}
	all := cmd.Flags().BoolP("all", "a", false, "Include completed tasks")
	done := cmd.Flags().Bool("done", false, "Only completed tasks")
	priority := cmd.Flags().StringP("priority", "p", "", "Filter by priority")
	category := cmd.Flags().StringP("category", "c", "", "Filter by category name or ID")
	search := cmd.Flags().StringP("search", "s", "", "Search title and description")
	sortBy := cmd.Flags().String("sort", string(store.SortDueDate), "Sort key (due_date, date_created, date_modified, title, priority)")
	desc := cmd.Flags().Bool("desc", false, "Sort descending")
	limit := cmd.Flags().IntP("limit", "n", 0, "Maximum results")
	asJSON := cmd.Flags().BoolP("json", "j", false, "Output as JSON")

	cmd.RunE = withApp(func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		filter := store.TaskFilter{}.SortedBy(store.TaskSort(*sortBy), *desc).Take(*limit)
		switch {
		case *done:
			filter = filter.CompletedOnly()
		case !*all:
			filter = filter.Incomplete()
		}
		if *priority != "" {
			filter = filter.WithPriority(model.ParsePriority(*priority))
		}
		if *category != "" {
			id, err := app.ResolveCategory(ctx, current.Store, *category)
			if err != nil {
				return err
			}
			filter = filter.InCategory(id)
		}
		if *search != "" {
			filter.Query = search
		}

		tasks, err := current.Store.QueryTasks(ctx, filter)
		if err != nil {
			return err
		}
		if *asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(tasks)
		}

		cats, err := current.Store.QueryCategories(ctx, store.CategoryFilter{})
		if err != nil {
			return err
		}
		byID := make(map[string]model.Category, len(cats))
		for _, c := range cats {
			byID[c.ID] = c
		}

		if len(tasks) == 0 {
			fmt.Println(theme.HelpStyle.Render("No tasks"))
			return nil
		}
		for _, t := range tasks {
			fmt.Println(formatTask(t, byID))
		}
		return nil
	})
	return cmd
}

func formatTask(t model.Task, cats map[string]model.Category) string {
	check := "[ ]"
	title := t.Title
	if t.IsCompleted {
		check = "[x]"
		title = theme.CompletedStyle.Render(title)
	}

	parts := []string{
		shortID(t.ID),
		check,
		theme.PriorityStyle(t.Priority).Render(fmt.Sprintf("%-3s", theme.PriorityMarker(t.Priority))),
		title,
	}
	if t.DueDate != nil {
		label := t.DueDate.Local().Format("Mon Jan 2 15:04")
		if t.IsOverdue(time.Now()) {
			label = theme.OverdueStyle.Render(label)
		} else {
			label = theme.HelpStyle.Render(label)
		}
		parts = append(parts, label)
	}
	if t.CategoryID != nil {
		if c, ok := cats[*t.CategoryID]; ok {
			parts = append(parts, theme.CategoryStyle(c).Render(c.Name))
		}
	}
	if t.ReminderType != model.ReminderNone && t.ReminderType != "" {
		parts = append(parts, theme.HelpStyle.Render("⏰ "+string(t.ReminderType)))
	}
	return strings.Join(parts, " ")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func doneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done [id]",
		Short: "Toggle a task's completion",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := app.ResolveTaskID(ctx, current.Store, args[0])
			if err != nil {
				return err
			}
			if _, err := current.Store.ToggleTaskCompletion(ctx, id); err != nil {
				return err
			}
			task, _, err := current.Store.GetTask(ctx, id)
			if err != nil {
				return err
			}
			fmt.Println(formatTask(task, nil))
			return nil
		}),
	}
}

func editCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit [id]",
		Short: "Edit a task",
		Args:  cobra.ExactArgs(1),
	}
	title := cmd.Flags().String("title", "", "New title")
	desc := cmd.Flags().StringP("desc", "d", "", "New description")
	due := cmd.Flags().String("due", "", "New due date")
	noDue := cmd.Flags().Bool("no-due", false, "Remove the due date")
	priority := cmd.Flags().StringP("priority", "p", "", "New priority")
	category := cmd.Flags().StringP("category", "c", "", "New category name or ID")
	noCategory := cmd.Flags().Bool("no-category", false, "Remove the category")
	remind := cmd.Flags().String("remind", "", "New reminder type")
	offset := cmd.Flags().Int64("remind-offset", 0, "New custom reminder offset in seconds")

	cmd.RunE = withApp(func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		id, err := app.ResolveTaskID(ctx, current.Store, args[0])
		if err != nil {
			return err
		}

		var u model.TaskUpdate
		flags := cmd.Flags()
		if flags.Changed("title") {
			u.Title = title
		}
		if flags.Changed("desc") {
			u.Description = desc
		}
		if *noDue {
			u.RemoveDueDate = true
		} else if *due != "" {
			t, err := app.ParseDue(*due, time.Now(), time.Local)
			if err != nil {
				return err
			}
			u.DueDate = &t
		}
		if *priority != "" {
			p := model.Priority(*priority)
			u.Priority = &p
		}
		if *noCategory {
			u.RemoveCategory = true
		} else if *category != "" {
			catID, err := app.ResolveCategory(ctx, current.Store, *category)
			if err != nil {
				return err
			}
			u.CategoryID = &catID
		}
		if *remind != "" {
			rt := model.ReminderType(*remind)
			u.ReminderType = &rt
		}
		if flags.Changed("remind-offset") {
			u.CustomReminderOffset = offset
		}

		found, err := current.Store.UpdateTask(ctx, id, u)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("task %s no longer exists", shortID(id))
		}
		return nil
	})
	return cmd
}

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := app.ResolveTaskID(ctx, current.Store, args[0])
			if err != nil {
				return err
			}
			if _, err := current.Store.DeleteRecord(ctx, model.EntityTask, id); err != nil {
				return err
			}
			return nil
		}),
	}
}

func clearCompletedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear-completed",
		Short: "Delete every completed task",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, args []string) error {
			n, err := current.Store.DeleteAllCompleted(cmd.Context())
			fmt.Printf("Deleted %d completed task(s)\n", n)
			return err
		}),
	}
}

func resetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all tasks, categories, notes and reminders",
		Args:  cobra.NoArgs,
	}
	yes := cmd.Flags().Bool("yes", false, "Confirm deleting everything")

	cmd.RunE = withApp(func(cmd *cobra.Command, args []string) error {
		if !*yes {
			ok, err := ui.Confirm(cmd.Context(),
				"Delete all data?",
				"Every task, category, note and pending reminder will be removed.",
				"Yes, delete",
				"Cancel",
			)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println("Nothing deleted")
				return nil
			}
		}
		n, err := current.Store.DeleteAllData(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Deleted %d record(s)\n", n)
		return nil
	})
	return cmd
}
