package main

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"specsync/internal/config"
	"specsync/internal/store"
)

func newStatusCmd(root *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the last synchronized state of every service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.ParseConfig(root.configPath)
			if err != nil {
				return err
			}

			st, err := openStore(cfg.Store)
			if err != nil {
				return err
			}
			defer st.Close()

			records, err := st.List()
			if err != nil {
				return err
			}

			printStatus(cmd.OutOrStdout(), cfg, records)
			return nil
		},
	}

	return cmd
}

// printStatus renders one row per name known to either the configuration or
// the store. Records for services no longer configured are kept visible
// rather than purged; removing them is an operator decision.
func printStatus(w io.Writer, cfg *config.Config, records map[string]store.Record) {
	names := make(map[string]struct{}, len(cfg.Services)+len(records))
	for _, svc := range cfg.Services {
		names[svc.Name] = struct{}{}
	}
	for name := range records {
		names[name] = struct{}{}
	}

	sorted := make([]string, 0, len(names))
	for name := range names {
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)

	configured := config.ServiceMap(cfg.Services)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SERVICE\tHASH\tKINDS\tUPDATED\tNOTE")
	for _, name := range sorted {
		rec, synced := records[name]
		svc, inConfig := configured[name]

		note := ""
		switch {
		case !inConfig:
			note = "not configured"
		case !svc.Enabled:
			note = "disabled"
		}

		if !synced {
			fmt.Fprintf(tw, "%s\t-\t-\tnever\t%s\n", name, note)
			continue
		}
		fmt.Fprintf(tw, "%s\t%.12s\t%d\t%s\t%s\n",
			name, rec.Hash, len(rec.Kinds), rec.UpdatedAt.Format(time.RFC3339), note)
	}
	tw.Flush() //nolint:errcheck
}
