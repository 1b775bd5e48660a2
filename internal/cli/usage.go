package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/raphaelgruber/impression-go/internal/metrics"
)

// printStats displays the store timing statistics collected during the command.
func printStats(w io.Writer, snap metrics.Snapshot) {
	fmt.Fprintf(w, "\nStore Statistics (this command)\n")
	fmt.Fprintf(w, "═══════════════════════════════════════\n")
	fmt.Fprintf(w, "Platform: %s\n", plat.Name)
	fmt.Fprintf(w, "Elapsed: %.3f seconds\n", snap.UptimeSeconds)

	if len(snap.Operations) == 0 {
		fmt.Fprintf(w, "\nNo store operations.\n")
	}
	for _, op := range snap.Operations {
		fmt.Fprintf(w, "\n%s:\n", op.Name)
		printOpStats(w, op)
	}

	if len(snap.Counters) > 0 {
		fmt.Fprintf(w, "\nCounters:\n")
		names := make([]string, 0, len(snap.Counters))
		for name := range snap.Counters {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(w, "  %-20s %d\n", name, snap.Counters[name])
		}
	}
}

// printOpStats displays timing statistics for an operation.
func printOpStats(w io.Writer, op metrics.OperationSnapshot) {
	fmt.Fprintf(w, "  Calls: %d, Errors: %d, Total: %dms\n", op.Count, op.Errors, op.TotalTimeMs)
	fmt.Fprintf(w, "  Time: avg %.1fms, min %dms, max %dms\n",
		op.AvgTimeMs, op.MinTimeMs, op.MaxTimeMs)
}
