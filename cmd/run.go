package cmd

import (
	"github.com/spf13/cobra"

	"github.com/forgelabs/forgelabs/internal/app"
)

// runApp opens the workspace, builds the chat gateway, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	ctx := cmd.Context()
	noSplash, _ := cmd.Flags().GetBool("no-splash")

	w, err := openWorkspace(cmd, logFile)
	if err != nil {
		return err
	}
	defer w.Close()

	return app.Run(ctx, app.Deps{
		Controller: w.ctrl,
		Gateway:    w.gateway(ctx),
		Activity:   w.store.EventRepo(),
		Log:        w.log,
		Splash:     !noSplash,
	})
}
