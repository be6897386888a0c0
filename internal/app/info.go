package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/envoic/internal/detector"
	"github.com/blackwell-systems/envoic/internal/disk"
)

const topPackageLimit = 10

var infoFlagFormat string

var infoCmd = &cobra.Command{
	Use:   "info <env-path>",
	Short: "Details for a single environment",
	Long: `Info runs a deep detection on one directory and prints its type,
interpreter version, size, package count, timestamps, the first installed
packages by name and how to activate it.`,
	Args: cobra.ExactArgs(1),
	RunE: runInfo,
}

func init() {
	infoCmd.Flags().StringVar(&infoFlagFormat, "format", "table", "Output format: table, json or yaml")

	rootCmd.AddCommand(infoCmd)
}

// envInfo is the structured form of the info command.
type envInfo struct {
	detector.Environment `yaml:",inline"`
	TopPackages          []string `json:"top_packages" yaml:"top_packages"`
	Activation           string   `json:"activation" yaml:"activation"`
}

func runInfo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	format, err := outputFormat(infoFlagFormat)
	if err != nil {
		return err
	}

	path := args[0]
	if !disk.IsDir(path) {
		return fmt.Errorf("%s is not a directory", path)
	}

	env := detector.Detect(path, detector.Options{
		Deep:          true,
		StaleDays:     cfg.StaleDays,
		IncludeDotenv: true,
	})
	if env.Kind == detector.KindUnknown {
		return fmt.Errorf("%s is not a recognized Python environment", path)
	}

	top := detector.ListTopPackages(env.Path, topPackageLimit)
	activation := detector.ActivationHint(env.Path, env.Kind)

	if format != "table" {
		if top == nil {
			top = []string{}
		}
		return writeStructured(cmd.OutOrStdout(), format, envInfo{Environment: env, TopPackages: top, Activation: activation})
	}
	renderInfo(cmd.OutOrStdout(), env, top, activation)
	return nil
}
