package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/pipeline"
)

var buildCmd = &cobra.Command{
	Use:   "build <unit.lgb>",
	Short: "Compile a unit to Rust source",
	Long: `Build runs the full analysis pipeline on a compilation unit and
emits Rust source. Additional artifacts (C header, Python and
TypeScript bindings) are emitted when enabled in the config file.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		outPath, _ := cmd.Flags().GetString("output")
		debug, _ := cmd.Flags().GetBool("debug")

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
			Debug:         debug || cfg.Verbose,
		})
		src, err := p.Run()
		if err != nil {
			reportError(err)
			return fmt.Errorf("build failed")
		}

		if outPath == "" {
			written, err := writeArtifact(cfg.OutputDir, name+".rs", src)
			if err != nil {
				return err
			}
			outPath = written
		} else {
			if err := os.WriteFile(outPath, []byte(src), 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", outPath, err)
			}
		}
		fmt.Printf("wrote %s\n", outPath)

		if cfg.EmitHeader {
			path, err := writeArtifact(cfg.OutputDir, name+".h", p.EmitHeader())
			if err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", path)
		}
		if cfg.EmitPython {
			path, err := writeArtifact(cfg.OutputDir, name+".py", p.EmitPythonBindings())
			if err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", path)
		}
		if cfg.EmitTypeScript {
			js, dts := p.EmitTypeScriptBindings()
			jsPath, err := writeArtifact(cfg.OutputDir, name+".js", js)
			if err != nil {
				return err
			}
			dtsPath, err := writeArtifact(cfg.OutputDir, name+".d.ts", dts)
			if err != nil {
				return err
			}
			fmt.Printf("wrote %s\nwrote %s\n", jsPath, dtsPath)
		}
		return nil
	},
}

func init() {
	buildCmd.Flags().StringP("config", "c", "", "path to a logos.yaml config file")
	buildCmd.Flags().StringP("output", "o", "", "output path for the Rust source (defaults to <module>.rs in the output directory)")
	buildCmd.Flags().Bool("debug", false, "print pipeline phase banners")
}
