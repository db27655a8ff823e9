package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/clinicore/intake/internal/model"
)

var sessionPatient string

// sessionCmd represents the session command
var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Run an interactive intake session",
	Long: `Session reads utterances from stdin, one per line, and processes each
as a conversational turn. The conversation context accumulates across
turns so later extractions can draw on earlier statements.

Type "exit" or press Ctrl-D to end the session.

Example:
  intake session --patient P-1042`,
	RunE: runSession,
}

func init() {
	rootCmd.AddCommand(sessionCmd)

	sessionCmd.Flags().StringVar(&sessionPatient, "patient", "", "patient identifier (required)")
	_ = sessionCmd.MarkFlagRequired("patient")
}

func runSession(cmd *cobra.Command, args []string) error {
	cfg := buildConfig()

	eng, cleanup, err := openEngine(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	fmt.Printf("Intake session for patient %s. Type \"exit\" to end.\n", sessionPatient)

	conv := model.NewConversationContext(time.Now().UTC())
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}

		now := time.Now().UTC()
		conv = model.ConversationContext{Turns: conv.Turns, TurnTime: now}

		ctx, cancel := context.WithTimeout(context.Background(), turnTimeout)
		result, err := eng.ProcessTurn(ctx, sessionPatient, line, conv)
		cancel()
		if err != nil {
			// A critical write failure ends the session: the operator
			// must know a safety-critical fact was not saved.
			return err
		}

		if err := renderResult(os.Stdout, result, cfg.Output.Format); err != nil {
			return err
		}
		conv = conv.WithTurn("patient", line, now)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	fmt.Println("Session ended.")
	return nil
}
