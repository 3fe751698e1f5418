package router

import (
	"database/sql"
	"net/http"

	"docuvault/config"
	handler "docuvault/internal/document"
	"docuvault/internal/document/repository"
	"docuvault/internal/document/service"
	"docuvault/middleware"
	"docuvault/socket"

	"github.com/VictoriaMetrics/metrics"
)

// Setup wires the repository/service/handler chain onto the HTTP mux. The
// literal routes (health, system, metrics) must stay more specific than
// the {store} patterns so the mux resolves them first.
func Setup(db *sql.DB, hub *socket.Hub, cfg *config.Config) http.Handler {
	mux := http.NewServeMux()

	docRepo := repository.NewDocumentRepository(db, cfg.QueryTimeout)
	docService := service.NewDocumentService(docRepo, hub)
	docHandler := handler.NewDocumentHandler(docService)

	// Change feed
	mux.Handle("GET /ws", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		socket.ServeWs(hub, w, r)
	}))

	// REST API
	m := middleware.Metrics
	mux.Handle("GET /api/health", m("health", http.HandlerFunc(docHandler.Health)))
	mux.Handle("GET /api/system/export", m("export", http.HandlerFunc(docHandler.ExportAll)))
	mux.Handle("POST /api/system/import", m("import", http.HandlerFunc(docHandler.Import)))
	mux.Handle("GET /api/{store}", m("read_store", http.HandlerFunc(docHandler.ReadStore)))
	mux.Handle("POST /api/{store}", m("upsert", http.HandlerFunc(docHandler.Upsert)))
	mux.Handle("DELETE /api/{store}/{id}", m("delete", http.HandlerFunc(docHandler.Delete)))

	mux.Handle("GET /metrics", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.WritePrometheus(w, true)
	}))

	return middleware.CORSMiddleware(mux)
}
