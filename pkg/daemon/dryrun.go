package daemon

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/inercia/iexec/pkg/config"
	"github.com/inercia/iexec/pkg/rlimit"
)

// DryRun prints what Run would do for cfg without changing any process
// state. Resource limits are read to show the pairs that would be committed;
// a request that Run would reject is shown with its error.
func DryRun(w io.Writer, cfg config.Config, sys rlimit.System, withEnv bool) error {
	out, err := cfg.ToYAML(withEnv)
	if err != nil {
		return fmt.Errorf("failed to render configuration: %w", err)
	}
	if _, err := w.Write(out); err != nil {
		return err
	}

	kinds := cfg.SortedLimits()
	if len(kinds) == 0 {
		return nil
	}

	header := color.New(color.Bold)
	changed := color.New(color.FgGreen)
	failed := color.New(color.FgRed)

	adj := rlimit.NewAdjuster(sys, nil)
	header.Fprintf(w, "\n%-18s %-24s %s\n", "LIMIT", "CURRENT (soft/hard)", "PLANNED (soft/hard)")
	for _, k := range kinds {
		cur, err := adj.Current(k)
		if err != nil {
			failed.Fprintf(w, "%-18s %v\n", k.Name, err)
			continue
		}
		current := adj.FormatLimit(cur.Soft) + "/" + adj.FormatLimit(cur.Hard)

		next, err := adj.Plan(k, cfg.Limits[k])
		if err != nil {
			fmt.Fprintf(w, "%-18s %-24s ", k.Name, current)
			failed.Fprintf(w, "%v\n", err)
			continue
		}
		fmt.Fprintf(w, "%-18s %-24s ", k.Name, current)
		changed.Fprintf(w, "%s/%s\n", adj.FormatLimit(next.Soft), adj.FormatLimit(next.Hard))
	}
	return nil
}
