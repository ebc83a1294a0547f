package cmd

import (
	"errors"

	"github.com/isparser/isparser/extractor"
	"github.com/isparser/isparser/extractor/movements"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var extractCmd = &cobra.Command{
	Use:   "extract [files...]",
	Short: "Extracts movements from statement(s)",
	Long: `Extracts the movements of the given statements into one file sorted by date.
PDF files are read as account statements, any other file as a spreadsheet
export. Directories are expanded to the files they contain.`,
	Args: cobra.ArbitraryArgs,
	RunE: runExtract,
}

// flag name -> config key
var extractFlagKeys = map[string]string{
	"output":        "output.path",
	"format":        "output.format",
	"split":         "output.split",
	"only-positive": "output.only_positive",
}

func addExtractFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringSliceP("files", "f", nil, "statement files or directories to parse")
	flags.StringP("output", "o", "./movements.csv", "output file path, the extension is added when missing")
	flags.BoolP("split", "s", false, "write income and outcome movements to separate files")
	flags.BoolP("only-positive", "p", false, "with --split, write outcome amounts as positive numbers")
	flags.String("format", "csv", "output format: csv or json")
	flags.StringArrayP("tag", "t", nil, "tag rule as name=regex, can be repeated")
	flags.StringArray("tags-file", nil, "file with one name=regex tag rule per line, can be repeated")
}

// bindExtractFlags binds the flags of the running command, so values given on
// the command line win over the config file.
func bindExtractFlags(cmd *cobra.Command) error {
	for flag, key := range extractFlagKeys {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return err
		}
	}
	return nil
}

func runExtract(cmd *cobra.Command, args []string) error {
	if err := bindExtractFlags(cmd); err != nil {
		return err
	}

	inputs, err := cmd.Flags().GetStringSlice("files")
	if err != nil {
		return err
	}
	inputs = append(inputs, args...)
	if len(inputs) == 0 {
		return errors.New("no input files, pass them as arguments or with --files")
	}

	format, err := movements.ParseFormat(viper.GetString("output.format"))
	if err != nil {
		return err
	}

	files, err := extractor.ExpandInputs(inputs)
	if err != nil {
		return err
	}

	tagRules, err := cmd.Flags().GetStringArray("tag")
	if err != nil {
		return err
	}
	tagFiles, err := cmd.Flags().GetStringArray("tags-file")
	if err != nil {
		return err
	}
	parser, err := extractor.NewParserFromConfig(tagRules, tagFiles, log)
	if err != nil {
		return err
	}

	for _, file := range files {
		if err := parser.Parse(file); err != nil {
			return err
		}
	}

	written, err := parser.Movements().Export(viper.GetString("output.path"), movements.ExportOptions{
		Format:       format,
		Split:        viper.GetBool("output.split"),
		OnlyPositive: viper.GetBool("output.only_positive"),
	})
	if err != nil {
		return err
	}

	log.Info().Int("files", len(files)).Int("movements", parser.Movements().Len()).Msg("extraction complete")
	for _, path := range written {
		log.Info().Str("path", path).Msg("written")
	}
	return nil
}

func init() {
	rootCmd.AddCommand(extractCmd)
	addExtractFlags(extractCmd)
}
