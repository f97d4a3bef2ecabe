package tfcprobe

import (
	"encoding/json"

	"github.com/redactyl/tfcprobe/internal/findfile"
	"github.com/redactyl/tfcprobe/internal/report"
	"github.com/redactyl/tfcprobe/internal/types"
	"github.com/spf13/cobra"
)

var (
	flagFindPath       string
	flagFindPathOp     string
	flagFindFilename   string
	flagFindFilenameOp string
	flagFindMaxDepth   int
	flagFindDirection  string
	flagFindFollow     string
	flagFindScope      string
)

func init() {
	cmd := &cobra.Command{
		Use:   "find",
		Short: "Resolve a path/filename specification and list the matching files",
		Example: `
# every *.conf below /etc/nginx, real directories only
tfcprobe find --path /etc/nginx --filename '\.conf$' --filename-op 'pattern match' \
  --max-depth -1 --direction down --follow directories

# directories named conf.d anywhere under /etc
tfcprobe find --path '^/etc/.*/conf\.d$' --path-op 'pattern match' --max-depth 0`,
		RunE: runFind,
	}
	rootCmd.AddCommand(cmd)

	cmd.Flags().StringVar(&flagFindPath, "path", "", "path value (literal or pattern)")
	cmd.Flags().StringVar(&flagFindPathOp, "path-op", string(types.OpEquals), "path operation: equals|'pattern match'")
	cmd.Flags().StringVar(&flagFindFilename, "filename", "", "filename value; omit to list directories")
	cmd.Flags().StringVar(&flagFindFilenameOp, "filename-op", string(types.OpEquals), "filename operation: equals|'pattern match'")
	cmd.Flags().IntVar(&flagFindMaxDepth, "max-depth", 1, "recursion depth (-1 = unbounded, 0 = none)")
	cmd.Flags().StringVar(&flagFindDirection, "direction", string(types.DirectionNone), "recurse direction: none|up|down")
	cmd.Flags().StringVar(&flagFindFollow, "follow", string(types.FollowSymlinksAndDirs), "entries to recurse into: 'symlinks and directories'|directories|symlinks")
	cmd.Flags().StringVar(&flagFindScope, "scope", string(types.ScopeAll), "filesystem scope: all|local")
	_ = cmd.MarkFlagRequired("path")
	_ = cmd.RegisterFlagCompletionFunc("path-op", operationValues)
	_ = cmd.RegisterFlagCompletionFunc("filename-op", operationValues)
	_ = cmd.RegisterFlagCompletionFunc("direction", directionValues)
	_ = cmd.RegisterFlagCompletionFunc("follow", followValues)
	_ = cmd.RegisterFlagCompletionFunc("scope", scopeValues)
}

type findOutput struct {
	Units      []unitJSON `json:"units"`
	Total      int        `json:"total"`
	RootErrors []string   `json:"root_errors,omitempty"`
}

type unitJSON struct {
	Path     string `json:"path"`
	Filename string `json:"filename,omitempty"`
}

func runFind(cmd *cobra.Command, _ []string) error {
	s, err := resolveSettings()
	if err != nil {
		return err
	}
	log, err := s.logger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	_, pathEngine, err := s.engines()
	if err != nil {
		return err
	}

	req := findfile.Request{
		Path: types.Spec{Operation: types.Operation(flagFindPathOp), Value: flagFindPath},
		Behaviors: types.Behaviors{
			MaxDepth:  flagFindMaxDepth,
			Direction: types.Direction(flagFindDirection),
			Follow:    types.Follow(flagFindFollow),
			Scope:     types.Scope(flagFindScope),
		},
	}
	if flagFindFilename != "" {
		req.Filename = &types.Spec{Operation: types.Operation(flagFindFilenameOp), Value: flagFindFilename}
	}

	res, err := (&findfile.Finder{Engine: pathEngine, Log: log}).Find(cmd.Context(), req)
	if err != nil {
		return err
	}
	for _, e := range res.RootErrors {
		log.WithError(e).Warn("root skipped")
	}

	out := cmd.OutOrStdout()
	if !flagJSON {
		report.PrintUnits(out, res.Units, !colorEnabled(out, s.NoColor))
		return nil
	}
	doc := findOutput{Units: make([]unitJSON, 0, len(res.Units)), Total: res.Total}
	for _, u := range res.Units {
		doc.Units = append(doc.Units, unitJSON{Path: u.Path, Filename: u.Filename})
	}
	for _, e := range res.RootErrors {
		doc.RootErrors = append(doc.RootErrors, e.Error())
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
