package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/forgelabs/forgelabs/internal/chat"
)

var chatCmd = &cobra.Command{
	Use:   "chat [message...]",
	Short: "Ask the lab assistant",
	Long: `Ask the lab assistant a question.

With a message, prints one reply and exits. Without one, starts an
interactive session that keeps the recent conversation as context; type
"exit" or press Ctrl+D to leave.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		lessonID, _ := cmd.Flags().GetString("lesson")
		verbose, _ := cmd.Flags().GetBool("verbose")

		w, err := openWorkspace(cmd, logQuiet)
		if err != nil {
			return err
		}
		defer w.Close()

		ctx := cmd.Context()
		out := cmd.OutOrStdout()
		s := chat.NewSession(uuid.NewString(), w.gateway(ctx), lessonID)

		if len(args) > 0 {
			reply, err := s.Send(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			printReply(out, reply, verbose)
			return nil
		}

		fmt.Fprintf(out, "%s\n\n", s.Greeting())
		sc := bufio.NewScanner(cmd.InOrStdin())
		for {
			fmt.Fprint(out, "you> ")
			if !sc.Scan() {
				fmt.Fprintln(out)
				return sc.Err()
			}
			line := strings.TrimSpace(sc.Text())
			if line == "" {
				continue
			}
			if line == "exit" || line == "quit" {
				return nil
			}
			reply, err := s.Send(ctx, line)
			if err != nil {
				return err
			}
			printReply(out, reply, verbose)
		}
	},
}

func init() {
	chatCmd.Flags().StringP("lesson", "l", chat.GeneralLesson, "Lesson the question is about")
	chatCmd.Flags().BoolP("verbose", "v", false, "Show which model answered and any failed candidates")
}

func printReply(w io.Writer, r chat.Reply, verbose bool) {
	fmt.Fprintf(w, "assistant> %s\n", r.Text)
	if !verbose {
		return
	}
	for _, f := range r.Failures {
		fmt.Fprintf(w, "  skipped %s: %s\n", f.Candidate, f.Error)
	}
	if r.Source == chat.SourceKnowledgeBase {
		fmt.Fprintln(w, "  (offline answer from the knowledge base)")
	} else {
		fmt.Fprintf(w, "  (answered by %s)\n", r.Candidate)
	}
	fmt.Fprintln(w)
}
