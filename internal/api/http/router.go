package http

import (
	"net/http"
	"strings"

	"garment-rental-backend/internal/security"
	"garment-rental-backend/internal/service"
	"garment-rental-backend/internal/storage"

	"github.com/gorilla/mux"
)

// Services bundles what the router dispatches to.
type Services struct {
	Coordinator service.LifecycleCoordinator
	Inventory   service.InventoryService
	Contracts   service.ContractService
	Stats       service.StatsService
	Auth        service.AuthService
	Tokens      security.TokenManager
	Media       storage.MediaStore
	Events      http.Handler
	DB          Pinger
}

// RouterConfig controls the static upload route.
type RouterConfig struct {
	UploadDir    string
	UploadURL    string // e.g. "/uploads"
	MaxFileBytes int64
}

// NewRouter registers every route under /api plus the static upload files.
func NewRouter(svc Services, cfg RouterConfig) *mux.Router {
	router := mux.NewRouter()
	router.Use(Recoverer, RequestLogger)

	if svc.DB != nil {
		router.HandleFunc("/healthz", Health(svc.DB)).Methods(http.MethodGet)
	}

	if cfg.UploadDir != "" {
		prefix := strings.TrimSuffix(cfg.UploadURL, "/") + "/"
		router.PathPrefix(prefix).Handler(
			http.StripPrefix(prefix, http.FileServer(http.Dir(cfg.UploadDir))),
		).Methods(http.MethodGet, http.MethodHead)
	}

	api := router.PathPrefix("/api").Subrouter()

	authHandler := NewAuthHandler(svc.Auth)
	api.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)

	protected := api.NewRoute().Subrouter()
	protected.Use(NewAuthMiddleware(svc.Tokens).RequireAuth)

	protected.HandleFunc("/auth/me", authHandler.Me).Methods(http.MethodGet)

	items := NewItemHandler(svc.Coordinator, svc.Inventory)
	protected.HandleFunc("/items", items.CreateItem).Methods(http.MethodPost)
	protected.HandleFunc("/items", items.ListItems).Methods(http.MethodGet)
	protected.HandleFunc("/items/{id}", items.GetItem).Methods(http.MethodGet)
	protected.HandleFunc("/items/{id}", items.UpdateItem).Methods(http.MethodPut)
	protected.HandleFunc("/items/{id}", items.DeleteItem).Methods(http.MethodDelete)
	protected.HandleFunc("/history/items/{id}", items.ItemHistory).Methods(http.MethodGet)

	if svc.Media != nil {
		photos := NewPhotoUploadHandler(svc.Media, svc.Coordinator, svc.Inventory, cfg.MaxFileBytes)
		protected.HandleFunc("/items/{id}/photos", photos.UploadPhotos).Methods(http.MethodPost)
	}

	contracts := NewContractHandler(svc.Coordinator, svc.Contracts)
	protected.HandleFunc("/contracts", contracts.OpenContract).Methods(http.MethodPost)
	protected.HandleFunc("/contracts", contracts.ListContracts).Methods(http.MethodGet)
	protected.HandleFunc("/contracts/overdue", contracts.ListOverdue).Methods(http.MethodGet)
	protected.HandleFunc("/contracts/{id}", contracts.GetContract).Methods(http.MethodGet)
	protected.HandleFunc("/contracts/{id}", contracts.UpdateContract).Methods(http.MethodPut)
	protected.HandleFunc("/contracts/{id}", contracts.DeleteContract).Methods(http.MethodDelete)
	protected.HandleFunc("/history/clients/{taxId}", contracts.ClientHistory).Methods(http.MethodGet)

	dashboard := NewDashboardHandler(svc.Stats)
	protected.HandleFunc("/dashboard/stats", dashboard.Stats).Methods(http.MethodGet)

	if svc.Events != nil {
		protected.Handle("/events", svc.Events).Methods(http.MethodGet)
	}

	return router
}
