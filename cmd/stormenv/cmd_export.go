package main

// #region imports
import (
	"github.com/spf13/cobra"

	"github.com/cancetinsoy/stormenv/internal/logging"
	"github.com/cancetinsoy/stormenv/internal/modelstore"
)

// #endregion imports

// #region command

var (
	exportModelFlags modelFlags
	exportDBPath     string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Snapshot a loaded model into a SQLite database",
	RunE:  runExport,
}

func init() {
	exportModelFlags.register(exportCmd)
	exportCmd.Flags().StringVar(&exportDBPath, "db", "", "path of the SQLite database to write")
	exportCmd.MarkFlagRequired("db")
}

// #endregion command

// #region run

func runExport(cmd *cobra.Command, args []string) error {
	model, _, err := exportModelFlags.load()
	if err != nil {
		return err
	}

	store, err := modelstore.Open(exportDBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Export(model); err != nil {
		return err
	}

	logging.New("export").Info("model exported",
		"db", exportDBPath,
		"states", len(model.States),
		"transitions", model.NumTransitions(),
		"initial_state", model.InitialState,
	)
	return nil
}

// #endregion run
