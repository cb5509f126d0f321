// Package ui holds the interactive terminal pieces shared by the commands.
package ui

import (
	"context"

	"github.com/charmbracelet/huh"

	"github.com/nhle/taskdock/internal/notify"
)

// Confirm shows a yes/no prompt and returns the answer.
func Confirm(ctx context.Context, title, description, affirmative, negative string) (bool, error) {
	var ok bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative(affirmative).
				Negative(negative).
				Value(&ok),
		),
	).RunWithContext(ctx)
	if err != nil {
		return false, err
	}
	return ok, nil
}

// NotificationPrompt asks whether taskdock may show reminder notifications.
func NotificationPrompt() notify.PromptFunc {
	return func(ctx context.Context) (bool, error) {
		return Confirm(ctx,
			"Allow taskdock to show reminders?",
			"Tasks with a reminder will notify you before they are due.",
			"Allow",
			"Don't Allow",
		)
	}
}
