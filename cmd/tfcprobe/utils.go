package tfcprobe

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/redactyl/tfcprobe/internal/config"
	"github.com/redactyl/tfcprobe/internal/logging"
	"github.com/redactyl/tfcprobe/internal/probe"
	"github.com/redactyl/tfcprobe/internal/regex"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"
)

// settings is the effective configuration after applying CLI > local > global.
type settings struct {
	Engine       string        `yaml:"engine"`
	PathEngine   string        `yaml:"path_engine"`
	MaxLineBytes int           `yaml:"max_line_bytes"`
	MaxCaptures  int           `yaml:"max_captures"`
	MatchTimeout time.Duration `yaml:"match_timeout"`
	Threads      int           `yaml:"threads"`
	LogLevel     string        `yaml:"log_level"`
	LogFormat    string        `yaml:"log_format"`
	NoColor      bool          `yaml:"no_color"`
	Objects      []string      `yaml:"objects,omitempty"`
	Baseline     string        `yaml:"baseline,omitempty"`
	Audit        string        `yaml:"audit,omitempty"`
}

func loadConfigs() (local, global config.FileConfig, err error) {
	if c, err := config.LoadGlobal(); err == nil {
		global = c
	} else if !errors.Is(err, config.ErrNoConfig) {
		return local, global, fmt.Errorf("global config: %w", err)
	}
	wd, err := os.Getwd()
	if err != nil {
		return local, global, err
	}
	if c, err := config.LoadLocal(wd); err == nil {
		local = c
	} else if !errors.Is(err, config.ErrNoConfig) {
		return local, global, fmt.Errorf("local config: %w", err)
	}
	return local, global, nil
}

func resolveSettings() (settings, error) {
	lcfg, gcfg, err := loadConfigs()
	if err != nil {
		return settings{}, err
	}
	s := settings{
		Engine:       pickString(flagEngine, lcfg.Engine, gcfg.Engine),
		PathEngine:   pickString(flagPathEngine, lcfg.PathEngine, gcfg.PathEngine),
		MaxLineBytes: pickInt(0, lcfg.MaxLineBytes, gcfg.MaxLineBytes),
		MaxCaptures:  pickInt(0, lcfg.MaxCaptures, gcfg.MaxCaptures),
		Threads:      pickInt(flagThreads, lcfg.Threads, gcfg.Threads),
		LogLevel:     pickString(flagLogLevel, lcfg.LogLevel, gcfg.LogLevel),
		LogFormat:    pickString(flagLogFormat, lcfg.LogFormat, gcfg.LogFormat),
		NoColor:      pickBool(flagNoColor, lcfg.NoColor, gcfg.NoColor),
		Objects:      pickStrings(nil, lcfg.Objects, gcfg.Objects),
		Baseline:     pickString("", lcfg.Baseline, gcfg.Baseline),
		Audit:        pickString("", lcfg.Audit, gcfg.Audit),
	}
	if s.Engine == "" {
		s.Engine = regex.NamePCRE
	}
	if s.PathEngine == "" {
		s.PathEngine = regex.NamePOSIX
	}
	if s.MaxLineBytes == 0 {
		s.MaxLineBytes = probe.DefaultMaxLineBytes
	}
	if s.MaxCaptures == 0 {
		s.MaxCaptures = probe.DefaultMaxCaptures
	}
	if s.Threads <= 0 {
		s.Threads = runtime.GOMAXPROCS(0)
	}
	if v := pickString(flagMatchTimeout, lcfg.MatchTimeout, gcfg.MatchTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return s, fmt.Errorf("match_timeout: %w", err)
		}
		s.MatchTimeout = d
	}
	return s, nil
}

func (s settings) logger(w io.Writer) (*logrus.Logger, error) {
	return logging.New(w, s.LogLevel, s.LogFormat)
}

func (s settings) engines() (content, path regex.Engine, err error) {
	opts := regex.Options{MatchTimeout: s.MatchTimeout}
	if content, err = regex.ByName(s.Engine, opts); err != nil {
		return nil, nil, err
	}
	if path, err = regex.ByName(s.PathEngine, opts); err != nil {
		return nil, nil, err
	}
	return content, path, nil
}

// colorEnabled reports whether w is a terminal and color was not disabled.
func colorEnabled(w io.Writer, noColor bool) bool {
	if noColor {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func pickString(cli string, local, global *string) string {
	if cli != "" {
		return cli
	}
	if local != nil && *local != "" {
		return *local
	}
	if global != nil && *global != "" {
		return *global
	}
	return ""
}

func pickStrings(cli, local, global []string) []string {
	if len(cli) > 0 {
		return cli
	}
	if len(local) > 0 {
		return local
	}
	return global
}

func pickInt(cli int, local, global *int) int {
	if cli != 0 {
		return cli
	}
	if local != nil && *local != 0 {
		return *local
	}
	if global != nil && *global != 0 {
		return *global
	}
	return 0
}

func pickBool(cli bool, local, global *bool) bool {
	if cli {
		return true
	}
	if local != nil {
		return *local
	}
	if global != nil {
		return *global
	}
	return false
}
