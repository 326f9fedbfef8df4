package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/pipeline"
)

var headerCmd = &cobra.Command{
	Use:   "header <unit.lgb>",
	Short: "Generate the C header for a unit's exported functions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		outPath, _ := cmd.Flags().GetString("output")

		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		unit, err := loadUnit(args[0])
		if err != nil {
			return err
		}
		name := cfg.ModuleName
		if name == "" {
			name = unit.Name
		}
		if name == "" {
			name = unitBaseName(args[0])
		}

		p := pipeline.New(unit, pipeline.Options{
			ModuleName:    name,
			MaxIterations: cfg.MaxIterations,
		})
		if err := p.Analyze(); err != nil {
			reportError(err)
			return fmt.Errorf("header generation failed")
		}

		header := p.EmitHeader()
		if outPath == "" {
			fmt.Print(header)
			return nil
		}
		if err := os.WriteFile(outPath, []byte(header), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", outPath, err)
		}
		fmt.Printf("wrote %s\n", outPath)
		return nil
	},
}

func init() {
	headerCmd.Flags().StringP("config", "c", "", "path to a logos.yaml config file")
	headerCmd.Flags().StringP("output", "o", "", "output path (defaults to stdout)")
}
