package cmd

import (
	"net/http"

	"docuvault/config/database"
	"docuvault/internal/document/repository"
	"docuvault/pkg/logger"
	"docuvault/router"
	"docuvault/socket"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the document store server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("endpoint", "", "address the HTTP API listens on (e.g. 0.0.0.0:8080)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger.Init(cfg.LogLevel)

	db, err := database.Connect(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	// A failed init is logged, not fatal: the service serves degraded and
	// operations report storage errors until the backend is reachable.
	repo := repository.NewDocumentRepository(db, cfg.QueryTimeout)
	if err := repo.EnsureSchema(cmd.Context()); err != nil {
		logger.Sugar.Errorf("Schema initialization failed, starting degraded: %v", err)
	}

	hub := socket.NewHub()
	go hub.Run()

	logger.Sugar.Infof("Document store listening on %s", cfg.Addr)
	return http.ListenAndServe(cfg.Addr, router.Setup(db, hub, cfg))
}
