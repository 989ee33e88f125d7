package main

import (
	"github.com/arvidh/dynotes/webui"
	"github.com/spf13/cobra"
)

var (
	uiHost string
	uiPort int
)

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Start a simple web UI for adding and listing notes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, cfg, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("host") {
			cfg.UI.Host = uiHost
		}
		if cmd.Flags().Changed("port") {
			cfg.UI.Port = uiPort
		}
		server := webui.NewServer(webui.ServerConfig{
			Host:          cfg.UI.Host,
			Port:          cfg.UI.Port,
			DefaultUserID: cfg.UserID,
		}, store)
		return server.Run()
	},
}

func init() {
	rootCmd.AddCommand(uiCmd)
	uiCmd.Flags().StringVar(&uiHost, "host", "127.0.0.1", "Host to bind the web UI")
	uiCmd.Flags().IntVar(&uiPort, "port", 5000, "Port to bind the web UI")
}
