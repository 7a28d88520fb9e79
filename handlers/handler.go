package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tripforge/database"
	"tripforge/services"
)

// Store is the persistence surface the handlers need. *database.Store
// satisfies it; tests substitute an in-memory fake.
type Store interface {
	Ping() error
	SaveSearch(r *database.SearchRecord) error
	GetSearch(id string) (*database.SearchRecord, error)
	SaveItinerary(r *database.ItineraryRecord) error
	GetItinerary(id string) (*database.ItineraryRecord, error)
	GetItineraryBySearchID(searchID string) (*database.ItineraryRecord, error)
}

// Handler carries the wired collaborators. All route handlers are
// methods on it; nothing reaches for package-level state.
type Handler struct {
	store        Store
	orchestrator *services.Orchestrator
	hotels       services.HotelSearcher
	ai           *services.AIClient
}

func New(store Store, orchestrator *services.Orchestrator, hotels services.HotelSearcher, ai *services.AIClient) *Handler {
	return &Handler{
		store:        store,
		orchestrator: orchestrator,
		hotels:       hotels,
		ai:           ai,
	}
}

func (h *Handler) Health(c *gin.Context) {
	dbStatus := "ok"
	if h.store == nil {
		dbStatus = "not initialized"
	} else if err := h.store.Ping(); err != nil {
		dbStatus = "error: " + err.Error()
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"service":  "TripForge API",
		"database": dbStatus,
	})
}
