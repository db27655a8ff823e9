package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/clinicore/intake/internal/model"
)

// renderResult writes one turn's outcome in the requested format
func renderResult(w io.Writer, res *model.TurnResult, format string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	if len(res.Persisted) == 0 && len(res.Flags) == 0 {
		fmt.Fprintln(w, "No medical information extracted.")
	}

	for _, rec := range res.Persisted {
		fmt.Fprintf(w, "stored [%s] %s: %q (priority=%s confidence=%.2f)\n",
			rec.Store, rec.Kind, rec.Text, rec.Priority, rec.Confidence)
		if rec.PatternStrength > 1 {
			fmt.Fprintf(w, "       observed %d times\n", rec.PatternStrength)
		}
	}

	for _, flag := range res.Flags {
		fmt.Fprintf(w, "CONTRADICTION [%s]: previously %q (record %d), now %q (flagged for review)\n",
			flag.Kind, flag.PriorText, flag.PriorRecordID, flag.NewText)
	}

	for _, warning := range res.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warning)
	}

	return nil
}

// renderRecords writes store records for the history command
func renderRecords(w io.Writer, records []model.Record, format string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	if len(records) == 0 {
		fmt.Fprintln(w, "No records found.")
		return nil
	}

	for _, rec := range records {
		fmt.Fprintf(w, "%s  [%s] %s: %q (priority=%s confidence=%.2f)",
			rec.CreatedAt.Format("2006-01-02 15:04"), rec.Store, rec.Kind, rec.Text, rec.Priority, rec.Confidence)
		if rec.PatternStrength > 1 {
			fmt.Fprintf(w, " strength=%d", rec.PatternStrength)
		}
		fmt.Fprintln(w)
	}
	return nil
}
