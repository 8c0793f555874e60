package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nainya/copyforge/pkg/drift"
	"github.com/nainya/copyforge/pkg/facts"
)

var (
	lockValue      string
	lockDate       string
	lockRestricted bool
	lockCTA        string
	checkCTA       bool
	jsonOutput     bool
)

var correctCmd = &cobra.Command{
	Use:   "correct [text]",
	Short: "Check text against locked facts and rewrite drifted details",
	Long: `Reads text from the arguments or stdin and checks it against the locked
facts given as flags. Drifted numbers, dates and restrictions are rewritten;
the corrected text is printed followed by the list of corrections.`,
	Example: `  echo "Enjoy 15% off until March 20" | copyforge correct --value 20% --date "March 15"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readText(cmd, args)
		if err != nil {
			return err
		}
		locked, err := lockedFromFlags(cmd)
		if err != nil {
			return err
		}

		res := drift.Correct(text, locked, drift.Options{CheckCTA: checkCTA})
		out := cmd.OutOrStdout()
		if jsonOutput {
			return writeJSON(out, res)
		}

		fmt.Fprintln(out, res.Text)
		if !res.Drifted {
			fmt.Fprintln(cmd.ErrOrStderr(), "no drift")
			return nil
		}
		for _, c := range res.Corrections {
			verb := "corrected"
			if !c.Applied {
				verb = "detected"
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%s %s: %q -> %q\n", verb, c.Kind, c.Found, c.Locked)
		}
		return nil
	},
}

var factsCmd = &cobra.Command{
	Use:   "facts [text]",
	Short: "Print the facts recognized in text",
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readText(cmd, args)
		if err != nil {
			return err
		}
		lf := facts.Capture([]string{text}, "")
		out := cmd.OutOrStdout()
		if jsonOutput {
			return writeJSON(out, lf)
		}

		if lf.Numeric != nil {
			fmt.Fprintf(out, "value:      %s (%s)\n", lf.Numeric, lf.Numeric.Kind)
		} else {
			fmt.Fprintln(out, "value:      none")
		}
		if lf.Expires != nil {
			fmt.Fprintf(out, "date:       %s\n", lf.Expires)
		} else {
			fmt.Fprintln(out, "date:       none")
		}
		fmt.Fprintf(out, "restricted: %t\n", lf.Restricted != nil && *lf.Restricted)
		return nil
	},
}

func init() {
	f := correctCmd.Flags()
	f.StringVar(&lockValue, "value", "", `Locked offer value, e.g. "20%" or "$15"`)
	f.StringVar(&lockDate, "date", "", `Locked date, e.g. "March 15", "3/15/2025" or "2025-03-15"`)
	f.BoolVar(&lockRestricted, "restricted", false, "Locked restriction (only checked when the flag is given)")
	f.StringVar(&lockCTA, "cta", "", "Locked call-to-action")
	f.BoolVar(&checkCTA, "check-cta", true, "Treat the text as a CTA-bearing field")

	correctCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print JSON")
	factsCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print JSON")
}

func lockedFromFlags(cmd *cobra.Command) (facts.LockedFacts, error) {
	var lf facts.LockedFacts
	if lockValue != "" {
		n, ok := facts.ParseNumeric(lockValue)
		if !ok {
			return lf, fmt.Errorf("unrecognized --value %q", lockValue)
		}
		lf.Numeric = &n
	}
	if lockDate != "" {
		d, ok := facts.ParseDate(lockDate)
		if !ok {
			return lf, fmt.Errorf("unrecognized --date %q", lockDate)
		}
		lf.Expires = &d
	}
	if cmd.Flags().Changed("restricted") {
		r := lockRestricted
		lf.Restricted = &r
	}
	lf.CTA = strings.TrimSpace(lockCTA)
	return lf, nil
}

func readText(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
