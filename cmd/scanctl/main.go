// Command scanctl seeds a demo document table, indexes it and runs indexed
// scans over it from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"storevec/pkg/config"
	"storevec/pkg/logging"
)

var (
	configPath string
	sqlitePath string
	opts       scanOptions
)

var rootCmd = &cobra.Command{
	Use:           "scanctl",
	Short:         "Run indexed scans over a demo vector table",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Seed the demo table and scan it through the id index",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := logging.Init(cfg.LoggingConfig()); err != nil {
			return fmt.Errorf("init logging: %w", err)
		}
		defer logging.Close()

		opts.hasMin = cmd.Flags().Changed("min")
		opts.hasMax = cmd.Flags().Changed("max")
		opts.hasNear = cmd.Flags().Changed("near")
		if err := runScan(cmd.Context(), cfg, opts, cmd.OutOrStdout()); err != nil {
			logging.WithError(err).Debug("scan failed", "rows", opts.rows, "key_only", opts.keyOnly)
			return err
		}
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(cfg)
	},
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if sqlitePath != "" {
		cfg.Storage.SQLitePath = sqlitePath
	}
	return cfg, nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&sqlitePath, "sqlite", "", "keep records in this SQLite database (\":memory:\" allowed)")

	f := scanCmd.Flags()
	f.IntVarP(&opts.rows, "rows", "n", 20, "number of demo documents to seed")
	f.Int64Var(&opts.min, "min", 0, "lowest id to return (inclusive)")
	f.Int64Var(&opts.max, "max", 0, "highest id to return (inclusive)")
	f.Int32Var(&opts.near, "near", 0, "keep documents whose embedding lies near this point on the first axis")
	f.Float64Var(&opts.within, "within", 5, "distance threshold used with --near")
	f.StringArrayVar(&opts.where, "where", nil, "keep records whose field equals a constant, as name=value (repeatable)")
	f.BoolVar(&opts.keyOnly, "key-only", false, "return index keys without reading records")

	rootCmd.AddCommand(scanCmd, configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error: "+err.Error()))
		os.Exit(1)
	}
}
