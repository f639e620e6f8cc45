package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "Show the configured provider set",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "PROVIDER\tENABLED\tWEIGHT\tAUTH\tMIN SCORE\tTIMEOUT\tBREAKER\tRATE")
		for _, p := range cfg.ProviderConfigs() {
			enabled := "no"
			if p.Enabled {
				enabled = "yes"
			}
			auth := ""
			if p.Authoritative {
				auth = "yes"
			}
			fmt.Fprintf(w, "%s\t%s\t%.2f\t%s\t%.2f\t%s\t%d\t%.1f/s\n",
				p.Name, enabled, p.Weight, auth, p.MinScore, p.Timeout, p.BreakerThreshold, p.RateLimit)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(providersCmd)
}
