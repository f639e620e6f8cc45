package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/lexhulp/lookup-cli/internal/model"
)

var (
	lookupContext []string
	lookupExclude []string
	lookupMax     int
	lookupTimeout time.Duration
	lookupJSON    bool
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <term>",
	Short: "Look up a legal term across all enabled providers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEngine()
		if err != nil {
			return err
		}
		defer env.Close()

		out, err := env.Engine.Lookup(cmd.Context(), model.LookupRequest{
			Term:                 args[0],
			Context:              lookupContext,
			MaxResults:           lookupMax,
			Timeout:              lookupTimeout,
			ExcludeJurisdictions: lookupExclude,
		})
		if err != nil {
			return eris.Wrap(err, "lookup")
		}

		if lookupJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		}
		printOutcome(cmd, args[0], out)
		return nil
	},
}

func printOutcome(cmd *cobra.Command, term string, out model.Outcome) {
	switch out.Status {
	case model.StatusUnavailable:
		cmd.Printf("%s: no source could be reached or none had anything\n", term)
	case model.StatusNoResults:
		cmd.Printf("%s: sources answered, but nothing scored above the configured floor\n", term)
	default:
		for i, r := range out.Results {
			cmd.Printf("%2d. [%.3f] %s (%s, %s)\n", i+1, float64(r.Final), r.Title, r.Provider, r.Stage)
			if r.SourceURL != "" {
				cmd.Printf("    %s\n", r.SourceURL)
			}
			if snippet := oneLine(r.Snippet); snippet != "" {
				cmd.Printf("    %s\n", snippet)
			}
			if len(r.Metadata.ECLIs) > 0 {
				cmd.Printf("    ecli: %s\n", strings.Join(r.Metadata.ECLIs, ", "))
			}
			if len(r.Metadata.References) > 0 {
				cmd.Printf("    refs: %s\n", strings.Join(r.Metadata.References, "; "))
			}
		}
	}
	for _, e := range out.ProviderErrors {
		fmt.Fprintf(os.Stderr, "warning: %s\n", e)
	}
}

// oneLine collapses a snippet to a single display line.
func oneLine(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	const max = 200
	if len(s) > max {
		s = s[:max] + "…"
	}
	return s
}

func init() {
	lookupCmd.Flags().StringSliceVar(&lookupContext, "context", nil, "context tokens, e.g. --context arbeidsrecht,werkgever")
	lookupCmd.Flags().StringSliceVar(&lookupExclude, "exclude", nil, "jurisdictions to drop, e.g. --exclude eu")
	lookupCmd.Flags().IntVar(&lookupMax, "max", 0, "maximum ranked results (default from config)")
	lookupCmd.Flags().DurationVar(&lookupTimeout, "timeout", 0, "aggregate deadline (default from config)")
	lookupCmd.Flags().BoolVar(&lookupJSON, "json", false, "print the full outcome as JSON")
	rootCmd.AddCommand(lookupCmd)
}
