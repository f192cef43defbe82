package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/forgelabs/forgelabs/internal/chat"
	"github.com/forgelabs/forgelabs/internal/envutil"
	"github.com/forgelabs/forgelabs/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the lesson, progress and chat HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		origins, _ := cmd.Flags().GetStringSlice("allow-origin")
		sessions, _ := cmd.Flags().GetInt("sessions")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		w, err := openWorkspace(cmd, logServer)
		if err != nil {
			return err
		}
		defer w.Close()

		srv := server.New(server.Config{
			Addr:         addr,
			AllowOrigins: origins,
		}, w.ctrl, chat.NewSessions(w.gateway(ctx), sessions), w.log)
		return srv.ListenAndServe(ctx)
	},
}

func init() {
	serveCmd.Flags().String("addr", envutil.String("FORGELABS_ADDR", server.DefaultAddr), "Listen address")
	serveCmd.Flags().StringSlice("allow-origin", envutil.List("FORGELABS_ALLOW_ORIGINS", nil), "CORS origins allowed to call the API (default: local dev servers)")
	serveCmd.Flags().Int("sessions", envutil.Int("FORGELABS_CHAT_SESSIONS", 0), "Maximum chat sessions kept in memory (0 uses the default)")
}
