package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/clinicore/intake/internal/engine"
	"github.com/clinicore/intake/internal/model"
)

var (
	turnPatient string
	turnFormat  string
	llmProvider string
	llmModel    string
)

// turnCmd represents the turn command
var turnCmd = &cobra.Command{
	Use:   "turn <utterance>",
	Short: "Process a single patient utterance",
	Long: `Turn runs one utterance through the full extraction pipeline:
pattern and model extraction, merging, priority/confidence scoring,
store routing, and reconciliation against the patient's prior records.

Example:
  intake turn --patient P-1042 "I'm allergic to penicillin and have had chest pain since yesterday"
  intake turn --patient P-1042 --format json "I take metformin for my diabetes"
  intake turn --patient P-1042 --llm-provider openai "my back hurts, about 7/10"`,
	Args: cobra.ExactArgs(1),
	RunE: runTurn,
}

func init() {
	rootCmd.AddCommand(turnCmd)

	turnCmd.Flags().StringVar(&turnPatient, "patient", "", "patient identifier (required)")
	turnCmd.Flags().StringVar(&turnFormat, "format", "", "output format (text, json)")
	turnCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "LLM provider for model extraction (openai, anthropic, ollama)")
	turnCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name")
	_ = turnCmd.MarkFlagRequired("patient")

	_ = viper.BindPFlag("llm.provider", turnCmd.Flags().Lookup("llm-provider"))
	_ = viper.BindPFlag("llm.model", turnCmd.Flags().Lookup("llm-model"))
	_ = viper.BindPFlag("output.format", turnCmd.Flags().Lookup("format"))
}

func runTurn(cmd *cobra.Command, args []string) error {
	cfg := buildConfig()

	eng, cleanup, err := openEngine(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), turnTimeout)
	defer cancel()

	conv := model.NewConversationContext(time.Now().UTC())
	result, err := eng.ProcessTurn(ctx, turnPatient, args[0], conv)
	if err != nil {
		var cwe *engine.CriticalWriteError
		if errors.As(err, &cwe) {
			fmt.Fprintf(os.Stderr, "SAFETY-CRITICAL FACT NOT SAVED: %v\n", cwe)
		}
		return err
	}

	return renderResult(os.Stdout, result, cfg.Output.Format)
}
