package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nao1215/pagegate/internal/urlfilter"
)

// checkResult is the JSON form of one URL verdict.
type checkResult struct {
	URL       string `json:"url"`
	Canonical string `json:"canonical,omitempty"`
	Valid     bool   `json:"valid"`
	Reason    string `json:"reason,omitempty"`
	Rule      string `json:"rule,omitempty"`
}

// NewCheckCmd creates the check command.
func NewCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <url>...",
		Short: "Show how URLs are canonicalized and whether they would be queued",
		Long: `Check runs URLs through the same normalizer and scope rules the filter
command applies to outbound links, and prints the canonical form and the
verdict for each. It is handy for testing trap rules in the configuration file.

The command exits with an error when any URL is rejected.

Examples:
  pagegate check https://WWW.ICS.UCI.EDU:443/about?b=2&a=1#top
  pagegate check --json https://www.ics.uci.edu/events/2024-01-01/`,
		Args: cobra.MinimumNArgs(1),
		RunE: runCheckCmd,
	}

	addConfigFlag(cmd)
	cmd.Flags().BoolP("json", "j", false, "Output one JSON object per URL")

	return cmd
}

// runCheckCmd executes the check command.
func runCheckCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	opts, err := cfg.FilterOptions()
	if err != nil {
		return err
	}
	filter := urlfilter.New(opts...)

	results := make([]checkResult, len(args))
	rejected := 0
	for i, raw := range args {
		res := filter.Check(raw)
		results[i] = checkResult{
			URL:       raw,
			Canonical: res.Canonical,
			Valid:     res.Valid,
			Reason:    string(res.Reason),
			Rule:      res.Rule,
		}
		if !res.Valid {
			rejected++
		}
	}

	if jsonOutput {
		err = writeCheckJSON(cmd.OutOrStdout(), results)
	} else {
		err = writeCheckText(cmd.OutOrStdout(), results)
	}
	if err != nil {
		return err
	}

	if rejected > 0 {
		return fmt.Errorf("%d of %d urls rejected", rejected, len(args))
	}
	return nil
}

func writeCheckJSON(w io.Writer, results []checkResult) error {
	enc := json.NewEncoder(w)
	for _, r := range results {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}

func writeCheckText(w io.Writer, results []checkResult) error {
	for _, r := range results {
		var err error
		switch {
		case r.Valid:
			_, err = fmt.Fprintf(w, "ok      %s\n", r.Canonical)
		case r.Rule != "":
			_, err = fmt.Fprintf(w, "reject  %s (%s)  %s\n", r.Reason, r.Rule, r.URL)
		default:
			_, err = fmt.Fprintf(w, "reject  %s  %s\n", r.Reason, r.URL)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
