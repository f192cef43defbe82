package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/forgelabs/forgelabs/internal/selfupdate"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update forgelabs to the latest release",
	RunE: func(cmd *cobra.Command, args []string) error {
		checkOnly, _ := cmd.Flags().GetBool("check")
		target, _ := cmd.Flags().GetString("version")
		out := cmd.OutOrStdout()
		checker := selfupdate.NewChecker()

		if checkOnly {
			res, err := checker.Check(cmd.Context(), &selfupdate.CheckInput{Version: version})
			if err != nil {
				return fmt.Errorf("check for updates: %w", err)
			}
			if !res.UpdateAvailable {
				fmt.Fprintf(out, "forgelabs %s is up to date (latest %s).\n", version, res.LatestVersion)
				return nil
			}
			fmt.Fprintf(out, "forgelabs %s is available (running %s).\n%s\n", res.LatestVersion, version, res.ReleaseURL)
			return nil
		}

		err := checker.Update(cmd.Context(), &selfupdate.UpdateInput{
			CurrentVersion: version,
			TargetVersion:  target,
		}, func(p selfupdate.UpdateProgress) {
			fmt.Fprintln(out, p.Message)
		})
		switch {
		case errors.Is(err, selfupdate.ErrAlreadyLatest):
			fmt.Fprintf(out, "forgelabs %s is already the latest version.\n", version)
			return nil
		case errors.Is(err, selfupdate.ErrDevBuild):
			return fmt.Errorf("%w; install a release build to use update", err)
		}
		return err
	},
}

func init() {
	updateCmd.Flags().Bool("check", false, "Only report whether an update is available")
	updateCmd.Flags().String("version", "", "Install this release tag instead of the latest")
}
