package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/pipeline"
)

var bindingsCmd = &cobra.Command{
	Use:   "bindings <unit.lgb>",
	Short: "Generate Python or TypeScript bindings over the C ABI",
	Long: `Bindings generates a host-language wrapper for a unit's exported
functions. Python bindings use ctypes; TypeScript bindings use koffi
and ship with a .d.ts declaration file.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		outDir, _ := cmd.Flags().GetString("output-dir")
		lang, _ := cmd.Flags().GetString("lang")

		if lang != "python" && lang != "ts" {
			return fmt.Errorf("unsupported binding language %q (want python or ts)", lang)
		}

		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		if outDir == "" {
			outDir = cfg.OutputDir
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
			return fmt.Errorf("bindings generation failed")
		}

		switch lang {
		case "python":
			path, err := writeArtifact(outDir, name+".py", p.EmitPythonBindings())
			if err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", path)
		case "ts":
			js, dts := p.EmitTypeScriptBindings()
			jsPath, err := writeArtifact(outDir, name+".js", js)
			if err != nil {
				return err
			}
			dtsPath, err := writeArtifact(outDir, name+".d.ts", dts)
			if err != nil {
				return err
			}
			fmt.Printf("wrote %s\nwrote %s\n", jsPath, dtsPath)
		}
		return nil
	},
}

func init() {
	bindingsCmd.Flags().StringP("config", "c", "", "path to a logos.yaml config file")
	bindingsCmd.Flags().String("lang", "python", "binding language: python or ts")
	bindingsCmd.Flags().String("output-dir", "", "directory for generated bindings (defaults to the config output directory)")
}
