package tfcprobe

import (
	"fmt"
	"os"

	"github.com/redactyl/tfcprobe/internal/config"
	"github.com/redactyl/tfcprobe/internal/probe"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	cfgOutput   string
	cfgEngine   string
	cfgThreads  int
	cfgNoColor  bool
	cfgObjects  []string
	cfgBaseline string
	cfgAudit    string
	cfgForce    bool
)

func init() {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long:  "Print the configuration in effect after applying flags, the local .tfcprobe.yml and the global config file.",
		RunE:  runConfigShow,
	}
	rootCmd.AddCommand(cfgCmd)

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a .tfcprobe.yml",
		RunE:  runConfigInit,
	}
	cfgCmd.AddCommand(initCmd)

	initCmd.Flags().StringVar(&cfgOutput, "output", ".tfcprobe.yml", "output file path")
	initCmd.Flags().StringVar(&cfgEngine, "engine", "pcre", "content regex engine: pcre|posix")
	initCmd.Flags().IntVar(&cfgThreads, "threads", 0, "objects evaluated concurrently (0=GOMAXPROCS)")
	initCmd.Flags().BoolVar(&cfgNoColor, "no-color", false, "disable color output by default")
	initCmd.Flags().StringSliceVar(&cfgObjects, "objects", []string{"objects/**/*.yaml"}, "object definition globs")
	initCmd.Flags().StringVar(&cfgBaseline, "baseline", "", "baseline file")
	initCmd.Flags().StringVar(&cfgAudit, "audit", "", "JSONL audit log file")
	initCmd.Flags().BoolVar(&cfgForce, "force", false, "overwrite an existing file")
	_ = initCmd.RegisterFlagCompletionFunc("engine", engineValues)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	s, err := resolveSettings()
	if err != nil {
		return err
	}
	b, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(b)
	return err
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	if _, err := os.Stat(cfgOutput); err == nil && !cfgForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", cfgOutput)
	}
	fc := config.FileConfig{
		Engine:       strPtr(cfgEngine),
		MaxLineBytes: intPtr(probe.DefaultMaxLineBytes),
		MaxCaptures:  intPtr(probe.DefaultMaxCaptures),
		Threads:      intPtr(cfgThreads),
		NoColor:      boolPtr(cfgNoColor),
		Objects:      cfgObjects,
		Baseline:     optStrPtr(cfgBaseline),
		Audit:        optStrPtr(cfgAudit),
	}
	b, err := yaml.Marshal(&fc)
	if err != nil {
		return err
	}
	if err := os.WriteFile(cfgOutput, b, 0644); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Wrote", cfgOutput)
	return nil
}

func strPtr(s string) *string { return &s }
func optStrPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
func intPtr(v int) *int {
	if v == 0 {
		return nil
	}
	return &v
}
func boolPtr(v bool) *bool { return &v }
