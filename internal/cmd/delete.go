package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/rezai-admin/internal/resource"
	"github.com/felixgeelhaar/rezai-admin/internal/tui"
	"github.com/felixgeelhaar/rezai-admin/internal/ux"
)

// confirmDelete arms a delete, asks for confirmation unless yes is set,
// and runs it. Declining disarms the delete.
func confirmDelete(cmd *cobra.Command, a *App, kind resource.Kind, id string, yes bool) error {
	a.Service.SelectDelete(kind, id)
	pending, _ := a.Service.Pending()

	if !yes {
		confirmed, err := askConfirmation(cmd, pending.Prompt())
		if err != nil {
			a.Service.CancelDelete()
			return err
		}
		if !confirmed {
			a.Service.CancelDelete()
			fmt.Fprintln(cmd.ErrOrStderr(), "Cancelled.")
			return nil
		}
	}

	return a.Service.ConfirmDelete(cmd.Context())
}

func askConfirmation(cmd *cobra.Command, prompt string) (bool, error) {
	if tui.ShouldPrompt() {
		return tui.PromptForConfirmation(prompt, false)
	}
	return ux.Confirm(cmd.InOrStdin(), cmd.ErrOrStderr(), prompt, false), nil
}
