package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/forgelabs/forgelabs/internal/catalog"
	"github.com/forgelabs/forgelabs/internal/progression"
)

var lessonsCmd = &cobra.Command{
	Use:   "lessons [id]",
	Short: "List the curriculum, or show one lesson",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		w, err := openWorkspace(cmd, logQuiet)
		if err != nil {
			return err
		}
		defer w.Close()

		ctx := cmd.Context()
		out := cmd.OutOrStdout()
		cat := w.ctrl.Catalog()
		st := w.ctrl.State(ctx)

		if len(args) == 1 {
			if err := w.ctrl.RequireUnlocked(ctx, args[0]); err != nil {
				return err
			}
			l, _ := cat.FindByID(args[0])
			if asJSON {
				return writeJSON(out, progression.LessonView{
					Lesson: l,
					Module: cat.ModuleTitle(l.ID),
					Status: progression.StatusOf(l.ID, st, cat),
				})
			}
			printLesson(out, cat, l)
			return nil
		}

		if st.UnlockedIndex > cat.Len() {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: unlock cursor %d is past the last of %d lessons\n",
				st.UnlockedIndex, cat.Len())
		}

		views := progression.Views(st, cat)
		if asJSON {
			return writeJSON(out, views)
		}

		fmt.Fprintf(out, "Progress: %d/%d lessons completed\n",
			progression.CompletedCount(st, cat), cat.Len())
		module := ""
		for _, v := range views {
			if v.Module != module {
				module = v.Module
				fmt.Fprintf(out, "\n%s\n", module)
			}
			fmt.Fprintf(out, "  %s %-28s  %-40s  %s\n",
				statusIcon(v.Status), truncate(v.Lesson.ID, 28), truncate(v.Lesson.Title, 40), v.Status)
		}
		return nil
	},
}

var completeCmd = &cobra.Command{
	Use:   "complete <id>",
	Short: "Mark a lesson without a quiz as completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := openWorkspace(cmd, logQuiet)
		if err != nil {
			return err
		}
		defer w.Close()

		ctx := cmd.Context()
		out := cmd.OutOrStdout()
		id := args[0]

		if err := w.ctrl.RequireUnlocked(ctx, id); err != nil {
			if errors.Is(err, progression.ErrUnknownLesson) {
				fmt.Fprintf(out, "Unknown lesson %q; nothing changed.\n", id)
				return nil
			}
			return err
		}
		if l, _ := w.ctrl.Catalog().FindByID(id); l.HasQuiz() {
			return fmt.Errorf("pass the quiz to complete this lesson: forgelabs quiz %s", id)
		}

		res, err := w.ctrl.CompleteLesson(ctx, id)
		if err != nil {
			return err
		}
		if !res.NewlyCompleted {
			fmt.Fprintln(out, "Already completed.")
			return nil
		}
		fmt.Fprintf(out, "Lesson complete! +%d XP, +%d aura\n", res.XPAwarded, res.AuraAwarded)
		printNext(out, w.ctrl.Catalog(), id)
		return nil
	},
}

var quizCmd = &cobra.Command{
	Use:   "quiz <id>",
	Short: "Show a lesson quiz, or submit answers with --answers",
	Long: `Show a lesson quiz, or submit answers with --answers.

Answers are given in question order, as option letters (a,b,c) or 1-based
option numbers (1,2,3).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, _ := cmd.Flags().GetString("answers")

		w, err := openWorkspace(cmd, logQuiet)
		if err != nil {
			return err
		}
		defer w.Close()

		ctx := cmd.Context()
		out := cmd.OutOrStdout()
		id := args[0]

		if err := w.ctrl.RequireUnlocked(ctx, id); err != nil {
			return err
		}
		l, _ := w.ctrl.Catalog().FindByID(id)
		if !l.HasQuiz() {
			return fmt.Errorf("lesson %q has no quiz", id)
		}

		if raw == "" {
			printQuiz(out, l)
			return nil
		}

		answers, err := parseAnswers(raw)
		if err != nil {
			return err
		}
		res, err := w.ctrl.SubmitQuiz(ctx, id, answers)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "Score: %d/%d (need %d)\n", res.Score, res.Total, res.Required)
		if !res.Passed {
			fmt.Fprintln(out, "Not quite. Review the lesson and try again.")
			return nil
		}
		fmt.Fprintln(out, "Quiz passed!")
		if c := res.Completion; c != nil && c.NewlyCompleted {
			fmt.Fprintf(out, "+%d XP, +%d aura\n", c.XPAwarded, c.AuraAwarded)
		}
		printNext(out, w.ctrl.Catalog(), id)
		return nil
	},
}

func init() {
	lessonsCmd.Flags().Bool("json", false, "Print JSON instead of a table")
	quizCmd.Flags().StringP("answers", "a", "", "Comma-separated answers, e.g. b,c or 2,3")
}

// parseAnswers turns "b,c" or "2,3" into zero-based option indexes.
func parseAnswers(raw string) ([]int, error) {
	parts := strings.Split(raw, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if len(p) == 1 && p[0] >= 'a' && p[0] <= 'z' {
			out = append(out, int(p[0]-'a'))
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid answer %q: use a letter or a 1-based number", p)
		}
		out = append(out, n-1)
	}
	return out, nil
}

func statusIcon(s progression.Status) string {
	switch s {
	case progression.StatusCompleted:
		return "✔"
	case progression.StatusAvailable:
		return "○"
	default:
		return "🔒"
	}
}

func printLesson(w io.Writer, cat *catalog.Catalog, l catalog.Lesson) {
	fmt.Fprintf(w, "%s\n%s\n", l.Title, cat.ModuleTitle(l.ID))
	if l.ContentFile != "" {
		fmt.Fprintf(w, "Content: %s\n", l.ContentFile)
	}
	printList(w, "Debugging tips", l.Debugging)
	printList(w, "Failure modes", l.Failure)
	if l.Playground != "" {
		fmt.Fprintf(w, "\nPlayground\n  %s\n", l.Playground)
	}
	if len(l.Resources) > 0 {
		fmt.Fprintln(w, "\nResources")
		for _, r := range l.Resources {
			fmt.Fprintf(w, "  %s  %s\n", r.Name, r.URL)
		}
	}
	if l.HasQuiz() {
		fmt.Fprintf(w, "\nQuiz: %d questions, pass with %d. Run: forgelabs quiz %s\n",
			len(l.Quiz.Questions), l.Quiz.PassScore, l.ID)
	}
}

func printList(w io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s\n", title)
	for _, it := range items {
		fmt.Fprintf(w, "  • %s\n", it)
	}
}

func printQuiz(w io.Writer, l catalog.Lesson) {
	fmt.Fprintf(w, "%s quiz (pass with %d of %d)\n", l.Title, l.Quiz.PassScore, len(l.Quiz.Questions))
	for i, q := range l.Quiz.Questions {
		fmt.Fprintf(w, "\n%d. %s\n", i+1, q.Question)
		for j, opt := range q.Options {
			fmt.Fprintf(w, "   %c) %s\n", 'a'+j, opt)
		}
	}
	fmt.Fprintf(w, "\nSubmit with: forgelabs quiz %s --answers a,b\n", l.ID)
}

func printNext(w io.Writer, cat *catalog.Catalog, id string) {
	if _, next := cat.Adjacent(id); next != nil {
		fmt.Fprintf(w, "Unlocked: %s (%s)\n", next.Title, next.ID)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
