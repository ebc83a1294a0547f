package cmd

import (
	"github.com/isparser/isparser/api"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP API server",
	Long:  `Starts the HTTP API server that accepts statement uploads and returns their movements as JSON or CSV.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := viper.BindPFlag("server.port", cmd.Flags().Lookup("port")); err != nil {
			return err
		}

		// requests are logged at info level unless asked otherwise
		serverLog := log
		if !quiet && serverLog.GetLevel() > zerolog.InfoLevel {
			serverLog = serverLog.Level(zerolog.InfoLevel)
		}

		cfg := api.DefaultConfig()
		cfg.Port = ":" + viper.GetString("server.port")
		cfg.Logger = serverLog.With().Str("component", "api").Logger()

		return api.New(cfg).Start()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("port", "p", "8080", "Port to run the API server on")
}
