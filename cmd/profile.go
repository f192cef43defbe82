package cmd

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/forgelabs/forgelabs/internal/progression"
	"github.com/forgelabs/forgelabs/internal/screens/history"
	"github.com/forgelabs/forgelabs/internal/store"
	"github.com/forgelabs/forgelabs/internal/ui/components"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show XP, aura level, progress and the activity heatmap",
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		w, err := openWorkspace(cmd, logQuiet)
		if err != nil {
			return err
		}
		defer w.Close()

		p, err := w.ctrl.Profile(cmd.Context())
		if err != nil {
			return fmt.Errorf("build profile: %w", err)
		}

		out := cmd.OutOrStdout()
		if asJSON {
			return writeJSON(out, p)
		}

		fmt.Fprintf(out, "Level:    %s\n", p.Level)
		fmt.Fprintf(out, "XP:       %d\n", p.XP)
		fmt.Fprintf(out, "Aura:     %d", p.Aura)
		if p.NextLevel != "" {
			fmt.Fprintf(out, " (%d to %s)", p.AuraToNext, p.NextLevel)
		}
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Helped:   %d peers\n", p.HelpCount)
		fmt.Fprintf(out, "Streak:   %d days\n", p.Streak)
		fmt.Fprintln(out, p.ProgressText())

		levels := make([]int, len(p.Heatmap))
		for i, d := range p.Heatmap {
			levels[i] = d.Level
		}
		if len(levels) > 0 {
			fmt.Fprintf(out, "\nLast %d days\n", progression.HeatmapDays)
			lipgloss.Fprintln(out, components.Heatmap(levels))
		}
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent learner activity",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		w, err := openWorkspace(cmd, logQuiet)
		if err != nil {
			return err
		}
		defer w.Close()

		events, err := w.store.EventRepo().QueryActivity(cmd.Context(), store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query activity: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(events) == 0 {
			fmt.Fprintln(out, "No activity yet.")
			return nil
		}
		fmt.Fprintf(out, "%-19s  %-18s  %-28s  %s\n", "Timestamp", "Event", "Lesson", "Reward")
		fmt.Fprintln(out, strings.Repeat("─", 80))
		for _, e := range events {
			subject := e.LessonID
			if subject == "" {
				subject = e.Detail
			}
			fmt.Fprintf(out, "%-19s  %-18s  %-28s  %s\n",
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				history.KindLabel(e.Kind),
				truncate(subject, 28),
				history.RewardText(e),
			)
		}
		return nil
	},
}

var actionCmd = &cobra.Command{
	Use:   "action <name>",
	Short: "Record a community action for aura",
	Long:  "Record a community action for aura. Actions: " + actionNames(),
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := progression.ParseAction(args[0])
		if err != nil {
			return err
		}

		w, err := openWorkspace(cmd, logQuiet)
		if err != nil {
			return err
		}
		defer w.Close()

		res, err := w.ctrl.RecordAction(cmd.Context(), a)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "+%d aura for %s. Aura %d, level %s.\n",
			res.AuraAwarded, res.Action, res.State.Aura, progression.AuraLevel(res.State.Aura))
		return nil
	},
}

func init() {
	profileCmd.Flags().Bool("json", false, "Print JSON")
	historyCmd.Flags().IntP("limit", "n", history.Limit, "Number of events to show")
}

func actionNames() string {
	var names []string
	for _, a := range progression.Actions() {
		names = append(names, fmt.Sprintf("%s (+%d)", a, a.Aura()))
	}
	return strings.Join(names, ", ")
}
