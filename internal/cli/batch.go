package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/clinicore/intake/internal/worker"
)

var (
	batchPatient string
	batchWorkers int
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <transcript-file>",
	Short: "Replay a transcript file through the engine",
	Long: `Batch reads utterances from a file, one per line, in the form
"patient_id|utterance" (lines without a separator belong to --patient).
Sessions for different patients are replayed concurrently; turns within
one patient's session stay strictly sequential.

Example:
  intake batch transcripts.txt
  intake batch visit-notes.txt --patient P-1042 --workers 8`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVar(&batchPatient, "patient", "", "patient for lines without an explicit id")
	batchCmd.Flags().IntVar(&batchWorkers, "workers", 0, "concurrent sessions (default from config)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg := buildConfig()
	if batchWorkers > 0 {
		cfg.Concurrency.BatchWorkers = batchWorkers
	}

	eng, cleanup, err := openEngine(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	limiter := worker.NewLimiter(cfg.LLM.RatePerSecond, cfg.LLM.Burst)
	processor := worker.NewBatchProcessor(eng, limiter, cfg.Concurrency.BatchWorkers)

	results, err := processor.ProcessFile(context.Background(), args[0], batchPatient)
	if err != nil {
		return err
	}

	turns, persisted, flagged, failed := 0, 0, 0, 0
	for _, session := range results {
		if session.Error != nil {
			failed++
			fmt.Fprintf(os.Stderr, "session %s failed: %v\n", session.PatientID, session.Error)
		}
		for _, res := range session.Results {
			turns++
			persisted += len(res.Persisted)
			flagged += len(res.Flags)
			if cfg.Output.Verbose {
				fmt.Printf("--- %s ---\n", session.PatientID)
				if err := renderResult(os.Stdout, res, cfg.Output.Format); err != nil {
					return err
				}
			}
		}
	}

	fmt.Printf("Processed %d turns across %d sessions: %d records persisted, %d contradictions flagged, %d sessions failed\n",
		turns, len(results), persisted, flagged, failed)

	if failed > 0 {
		return fmt.Errorf("%d session(s) failed", failed)
	}
	return nil
}
