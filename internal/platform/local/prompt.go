package local

import (
	"context"

	"github.com/charmbracelet/huh"
)

// FormPrompter asks for consent with an interactive confirm form.
type FormPrompter struct {
	AppName string
}

func (f FormPrompter) Prompt(ctx context.Context) (bool, error) {
	name := f.AppName
	if name == "" {
		name = "taskremind"
	}

	allow := true
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(`"` + name + `" would like to send you notifications`).
				Description("Reminders, daily summaries and streak milestones.").
				Affirmative("Allow").
				Negative("Don't Allow").
				Value(&allow),
		),
	)
	if err := form.RunWithContext(ctx); err != nil {
		return false, err
	}
	return allow, nil
}
