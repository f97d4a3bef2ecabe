package tfcprobe

import (
	"fmt"
	"strconv"

	"github.com/redactyl/tfcprobe/internal/audit"
	"github.com/spf13/cobra"
)

var flagHistoryAudit string

func init() {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded scans from the audit log, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			log, err := historyLog()
			if err != nil {
				return err
			}
			records, err := log.LoadHistory()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for i, r := range records {
				fmt.Fprintf(out, "%3d  %s  %s  objects=%d items=%d new=%d files=%d problems=%d  %s\n",
					i, r.Timestamp.Format("2006-01-02 15:04:05"), r.ScanID, len(r.Objects),
					r.TotalItems, r.NewItems, r.FilesScanned, r.Problems, r.Duration)
			}
			return nil
		},
	}
	del := &cobra.Command{
		Use:   "delete INDEX",
		Short: "Delete one record (index as listed by history)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid index %q", args[0])
			}
			log, err := historyLog()
			if err != nil {
				return err
			}
			return log.DeleteRecord(idx)
		},
	}
	cmd.PersistentFlags().StringVar(&flagHistoryAudit, "audit", "", "audit log file (default: audit from config)")
	cmd.AddCommand(del)
	rootCmd.AddCommand(cmd)
}

func historyLog() (*audit.AuditLog, error) {
	s, err := resolveSettings()
	if err != nil {
		return nil, err
	}
	path := pickString(flagHistoryAudit, &s.Audit, nil)
	if path == "" {
		return nil, fmt.Errorf("no audit log: pass --audit or set audit in the config file")
	}
	return audit.NewAuditLog(path), nil
}
