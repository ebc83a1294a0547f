package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/isparser/isparser/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Embedded default configuration. A config file found on disk is merged on top.
const defaultConfigYAML = `
statement:
  INTESA:
    patterns:
      movements_start: Dettaglio movimenti del conto corrente
      movements_end: Saldo finale al
      movement_line: '^\d{2}\.\d{2}\.\d{4}\s+\d{2}\.\d{2}\.\d{4}(?:\s.*)?$'
      date_format: "02.01.2006"
      separator_artifacts: ["\x19"]
      noise:
        - 'Pagina\s+\d+\s+di\s+\d+'
        - '^Totali'
      income:
        - Bonifico a Vostro favore disposto da
        - Versamento
        - Storno pagamento POS
        - Accredito
  INTESA_XLSX:
    sheet: ""
tags: []
tags_files: []
output:
  path: ./movements.csv
  format: csv
  split: false
  only_positive: false
server:
  port: "8080"`

var (
	cfgFile string
	verbose int
	debug   bool
	quiet   bool
	log     = zerolog.Nop()

	rootCmd = &cobra.Command{
		Use:   "isparser [files...]",
		Short: "Extract movements from Intesa Sanpaolo statements",
		Long: `isparser reads Intesa Sanpaolo account statements (PDF) and movement list
exports (spreadsheet) and writes their movements to a CSV or JSON file.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return runExtract(cmd, args)
			}
			return cmd.Help()
		},
	}
)

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initLogging)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default is ./.isparser.yaml)")
	rootCmd.PersistentFlags().CountVarP(&verbose, "verbose", "v", "verbose logging, repeat for debug output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "do not log anything")

	// isparser a.pdf b.pdf is a shorthand for isparser extract
	addExtractFlags(rootCmd)
}

func initLogging() {
	log = logger.New(logger.LevelFromVerbosity(verbose, debug, quiet))
}

func initConfig() {
	viper.SetConfigType("yaml")
	if err := viper.ReadConfig(bytes.NewBufferString(defaultConfigYAML)); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading embedded configuration: %v\n", err)
		os.Exit(1)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(".")
		viper.AddConfigPath(home)
		viper.SetConfigName(".isparser")
	}

	viper.SetEnvPrefix("ISPARSER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.MergeInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
			os.Exit(1)
		}
	}
}
