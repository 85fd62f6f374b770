package cmd

import (
	"github.com/spf13/cobra"

	"yowa/config"
	"yowa/devserver"
	"yowa/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local fixture store for offline development",
	RunE: func(cmd *cobra.Command, args []string) error {
		config.LoadConfig()
		cfg := config.AppConfig

		level := "info"
		if cfg.Debug {
			level = "debug"
		}
		log := logger.New(level)

		srv, err := devserver.New(devserver.Config{
			DBName:    cfg.DBName,
			JWTKey:    cfg.JWTKey,
			SaltRound: cfg.SaltRound,
			UploadDir: cfg.UploadDir,
		}, log)
		if err != nil {
			return err
		}
		defer srv.Close()

		return srv.Listen(cfg.Port)
	},
}
