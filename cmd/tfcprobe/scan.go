package tfcprobe

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/redactyl/tfcprobe/internal/audit"
	"github.com/redactyl/tfcprobe/internal/config"
	"github.com/redactyl/tfcprobe/internal/probe"
	"github.com/redactyl/tfcprobe/internal/report"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	flagObjects        []string
	flagBaseline       string
	flagUpdateBaseline bool
	flagAudit          string
	flagFailOnNew      bool
	flagTable          bool
)

func init() {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Evaluate textfilecontent objects and report the collected items",
		RunE:  runScan,
	}
	rootCmd.AddCommand(cmd)

	cmd.Flags().StringSliceVarP(&flagObjects, "objects", "o", nil, "object definition files or doublestar globs (default: objects from config)")
	cmd.Flags().StringVar(&flagBaseline, "baseline", "", "baseline file; items recorded there are not reported")
	cmd.Flags().BoolVar(&flagUpdateBaseline, "update-baseline", false, "write all collected items to the baseline file")
	cmd.Flags().StringVar(&flagAudit, "audit", "", "append a JSONL scan record to this file")
	cmd.Flags().BoolVar(&flagFailOnNew, "fail-on-new", false, "exit 1 when items outside the baseline are reported")
	cmd.Flags().BoolVar(&flagTable, "table", false, "output in table format (default)")
}

func runScan(cmd *cobra.Command, _ []string) error {
	s, err := resolveSettings()
	if err != nil {
		return err
	}
	log, err := s.logger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	patterns := pickStrings(flagObjects, s.Objects, nil)
	if len(patterns) == 0 {
		return fmt.Errorf("no object files: pass -o or set objects in the config file")
	}
	objs, err := config.LoadObjects(patterns)
	if err != nil {
		return err
	}
	content, path, err := s.engines()
	if err != nil {
		return err
	}
	p := &probe.Probe{
		Engine:       content,
		PathEngine:   path,
		Log:          log,
		MaxLineBytes: s.MaxLineBytes,
		MaxCaptures:  s.MaxCaptures,
	}

	scanID := uuid.NewString()
	log.WithField("scan_id", scanID).WithField("objects", len(objs)).Info("scan started")
	start := time.Now()

	results := make([]probe.Result, len(objs))
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(s.Threads)
	for i, obj := range objs {
		g.Go(func() error {
			res, err := p.Run(ctx, obj)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	duration := time.Since(start)

	baselinePath := pickString(flagBaseline, &s.Baseline, nil)
	reported := results
	if baselinePath != "" {
		if flagUpdateBaseline {
			if err := report.SaveBaseline(baselinePath, results); err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), "Baseline updated.")
		} else {
			base, err := report.LoadBaseline(baselinePath)
			if err != nil {
				return fmt.Errorf("baseline: %w", err)
			}
			reported = report.FilterNew(results, base)
		}
	} else if flagUpdateBaseline {
		return fmt.Errorf("--update-baseline needs --baseline or a baseline in the config file")
	}

	if auditPath := pickString(flagAudit, &s.Audit, nil); auditPath != "" {
		rec := audit.CreateScanRecord(scanID, results, reported, duration, baselinePath)
		if err := audit.NewAuditLog(auditPath).LogScan(rec); err != nil {
			log.WithError(err).Warn("audit record not written")
		}
	}

	out := cmd.OutOrStdout()
	if flagJSON {
		if err := report.WriteJSON(out, report.NewScanReport(scanID, reported)); err != nil {
			return err
		}
	} else if err := report.PrintTable(out, reported, report.PrintOptions{NoColor: !colorEnabled(out, s.NoColor), Duration: duration}); err != nil {
		return err
	}

	if flagFailOnNew && hasItems(reported) {
		exit(1)
	}
	return nil
}

func hasItems(results []probe.Result) bool {
	for _, r := range results {
		if len(r.Items) > 0 {
			return true
		}
	}
	return false
}

// exit is replaced in tests.
var exit = os.Exit
