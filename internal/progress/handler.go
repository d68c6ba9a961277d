package progress

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/nutritiontrax/nutritiontrax/internal/auth"
	"github.com/nutritiontrax/nutritiontrax/internal/telemetry/tracing"
	"github.com/nutritiontrax/nutritiontrax/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=progress_test

type progressRepo interface {
	Add(ctx context.Context, entry Entry) (*Entry, error)
	Latest(ctx context.Context, userID int) (*Entry, error)
	List(ctx context.Context, userID int) ([]Entry, error)
	WeightSeries(ctx context.Context, userID int) ([]Entry, error)
}

type Handler struct {
	repo progressRepo
}

func NewHandler(repo progressRepo) *Handler {
	return &Handler{
		repo: repo,
	}
}

func (handler *Handler) SetupRoutes(mainRouter *mux.Router) {
	mainRouter.HandleFunc("/progress", handler.HandleList).Methods("GET", "OPTIONS").Name("list-progress")
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.progress.list")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	entries, err := handler.repo.List(ctx, userID)
	if err != nil {
		log.Errorf("list progress for user %d: %s", userID, err)
		pkg.WriteJSONError(w, "failed to get progress", http.StatusInternalServerError)
		return
	}

	entriesJson, err := json.Marshal(entries)
	if err != nil {
		log.Errorf("marshal progress entries: %s", err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, entriesJson)
}
