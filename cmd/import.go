package cmd

import (
	"encoding/json"
	"os"

	"docuvault/config/database"
	"docuvault/internal/document/model"
	"docuvault/internal/document/repository"
	"docuvault/internal/document/service"
	"docuvault/pkg/logger"

	"github.com/spf13/cobra"
)

var importFile string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Replay a snapshot file into the database",
	Long:  "Reads a snapshot envelope produced by export and replays every document through the upsert path. Import is a merge: existing documents absent from the snapshot are kept.",
	RunE:  runImport,
}

func init() {
	importCmd.Flags().StringVarP(&importFile, "file", "f", "", "snapshot file to import (required)")
	importCmd.MarkFlagRequired("file")
}

func runImport(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger.Init(cfg.LogLevel)

	raw, err := os.ReadFile(importFile)
	if err != nil {
		return err
	}
	var snap model.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return err
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	repo := repository.NewDocumentRepository(db, cfg.QueryTimeout)
	if err := repo.EnsureSchema(cmd.Context()); err != nil {
		return err
	}

	svc := service.NewDocumentService(repo, nil)
	imported, err := svc.Import(cmd.Context(), &snap)
	if err != nil {
		logger.Sugar.Errorf("Import aborted after %d documents: %v", imported, err)
		return err
	}
	logger.Sugar.Infof("Imported %d documents (snapshot %s from %s)", imported, snap.Version, snap.Timestamp)
	return nil
}
