package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/redactyl/tfcprobe/internal/probe"
	"github.com/redactyl/tfcprobe/internal/types"
)

type PrintOptions struct {
	NoColor  bool
	Duration time.Duration
}

// PrintTable renders every item of every result as one table row, followed
// by the unreadable roots and files and a summary footer.
func PrintTable(w io.Writer, results []probe.Result, opts PrintOptions) error {
	items, files, problems := 0, 0, 0
	for _, r := range results {
		items += len(r.Items)
		files += r.Total
		problems += len(r.RootErrors) + len(r.ScanErrors)
	}

	if items == 0 {
		fmt.Fprintln(w, "No items collected")
	} else {
		table := tablewriter.NewWriter(w)
		table.Header("Object", "ID", "Status", "Path", "Filename", "Instance", "Text", "Subexpressions")
		for _, r := range results {
			for _, it := range r.Items {
				instance := ""
				if it.Instance > 0 {
					instance = strconv.Itoa(it.Instance)
				}
				row := []string{
					r.ObjectID,
					strconv.Itoa(it.ID),
					colorStatus(it.Status, opts.NoColor),
					it.Path,
					it.Filename,
					instance,
					it.Text,
					strings.Join(it.Subexpressions, ", "),
				}
				if err := table.Append(row); err != nil {
					return err
				}
			}
		}
		if err := table.Render(); err != nil {
			return err
		}
	}

	if problems > 0 {
		warn := color.New(color.FgYellow)
		setColor(warn, opts.NoColor)
		fmt.Fprintln(w)
		for _, r := range results {
			for _, err := range r.RootErrors {
				fmt.Fprintf(w, "%s %s: %v\n", warn.Sprint("skipped"), r.ObjectID, err)
			}
			for _, err := range r.ScanErrors {
				fmt.Fprintf(w, "%s %s: %v\n", warn.Sprint("unreadable"), r.ObjectID, err)
			}
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Objects: %d  Items: %d  Files: %d  Problems: %d\n", len(results), items, files, problems)
	if opts.Duration > 0 {
		fmt.Fprintf(w, "Scan duration: %.2fs\n", opts.Duration.Seconds())
	}
	return nil
}

// PrintUnits renders a discovery result, one line per unit.
func PrintUnits(w io.Writer, units []types.DiscoveredUnit, noColor bool) {
	dim := color.New(color.Faint)
	setColor(dim, noColor)
	for _, u := range units {
		if u.Missing() {
			fmt.Fprintf(w, "%s %s\n", u.Path, dim.Sprint("(no match)"))
			continue
		}
		fmt.Fprintln(w, joinUnit(u))
	}
}

func joinUnit(u types.DiscoveredUnit) string {
	if strings.HasSuffix(u.Path, "/") {
		return u.Path + u.Filename
	}
	return u.Path + "/" + u.Filename
}

func colorStatus(s types.Status, noColor bool) string {
	var c *color.Color
	switch s {
	case types.StatusExists:
		c = color.New(color.FgGreen)
	case types.StatusDoesNotExist:
		c = color.New(color.FgYellow)
	default:
		c = color.New(color.FgRed)
	}
	setColor(c, noColor)
	return c.Sprint(string(s))
}

func setColor(c *color.Color, noColor bool) {
	if noColor {
		c.DisableColor()
	} else {
		c.EnableColor()
	}
}
