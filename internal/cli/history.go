package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/clinicore/intake/internal/model"
	"github.com/clinicore/intake/internal/route"
	"github.com/clinicore/intake/internal/store"
)

var (
	historyPatient string
	historyKind    string
	historyFormat  string
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List a patient's stored records of one kind",
	Long: `History looks up a patient's records of a given kind in the store that
kind routes to, in creation order.

Example:
  intake history --patient P-1042 --kind allergy
  intake history --patient P-1042 --kind symptom --format json`,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().StringVar(&historyPatient, "patient", "", "patient identifier (required)")
	historyCmd.Flags().StringVar(&historyKind, "kind", "", "fact kind (required)")
	historyCmd.Flags().StringVar(&historyFormat, "format", "", "output format (text, json)")
	_ = historyCmd.MarkFlagRequired("patient")
	_ = historyCmd.MarkFlagRequired("kind")

	_ = viper.BindPFlag("output.format", historyCmd.Flags().Lookup("format"))
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg := buildConfig()

	kind := model.Kind(historyKind)
	if !kind.Valid() {
		return fmt.Errorf("unknown kind %q (valid: %v)", historyKind, model.Kinds())
	}

	router, err := route.NewRouter(cfg.Stores.Default)
	if err != nil {
		return err
	}
	target, err := router.Route(kind)
	if err != nil {
		return err
	}

	stores, err := store.OpenAll(cfg.Stores)
	if err != nil {
		return err
	}
	defer func() { _ = store.CloseAll(stores) }()

	records, err := stores[target].FindByPatientAndKind(context.Background(), historyPatient, kind)
	if err != nil {
		return fmt.Errorf("lookup in %s store: %w", target, err)
	}

	return renderRecords(os.Stdout, records, cfg.Output.Format)
}
