package commands

import (
	"time"

	"capacity-mcp/internal/web"

	"github.com/gin-gonic/gin"
	"github.com/pkg/browser"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	webAddr string
	webOpen bool
)

var webCmd = &cobra.Command{
	Use:   "web",
	Short: "Serve the capacity dashboard API and the backend proxy over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !verbose {
			gin.SetMode(gin.ReleaseMode)
		}
		addr := webAddr
		if addr == "" {
			addr = cfg.WebAddr
		}

		server, err := web.NewServer(cfg, loader)
		if err != nil {
			return err
		}

		if webOpen {
			go func() {
				// Give the listener a moment before the browser connects.
				time.Sleep(300 * time.Millisecond)
				url := "http://" + addr + "/"
				if err := browser.OpenURL(url); err != nil {
					log.Warn().Err(err).Str("url", url).Msg("Failed to open browser")
				}
			}()
		}

		ctx, stop := signalContext()
		defer stop()
		return server.Run(ctx, addr)
	},
}

func init() {
	webCmd.Flags().StringVar(&webAddr, "addr", "", "listen address (default WEB_ADDR or 127.0.0.1:8087)")
	webCmd.Flags().BoolVar(&webOpen, "open", false, "open the dashboard in the default browser")
	rootCmd.AddCommand(webCmd)
}
