package friends

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/nutritiontrax/nutritiontrax/internal/auth"
	"github.com/nutritiontrax/nutritiontrax/internal/goals"
	"github.com/nutritiontrax/nutritiontrax/internal/telemetry/tracing"
	"github.com/nutritiontrax/nutritiontrax/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type friendsRepo interface {
	Friends(ctx context.Context, userID int) ([]Friend, error)
	PendingRequests(ctx context.Context, userID int) ([]PendingRequest, error)
	SearchUsers(ctx context.Context, userID int, query string) ([]SearchResult, error)
	Request(ctx context.Context, userID, friendID int) (int, error)
	Accept(ctx context.Context, userID, friendshipID int) error
	Decline(ctx context.Context, userID, friendshipID int) error
	Remove(ctx context.Context, userID, friendUserID int) error
	AreFriends(ctx context.Context, userID, otherUserID int) (bool, error)
}

type challengesRepo interface {
	CreateChallenge(ctx context.Context, fromUserID int, goal goals.Goal) (int, error)
	AcceptChallenge(ctx context.Context, userID, goalID int) error
	DeclineChallenge(ctx context.Context, userID, goalID int) error
	PendingChallenges(ctx context.Context, userID int) ([]goals.Challenge, error)
}

type Handler struct {
	repo       friendsRepo
	challenges challengesRepo
}

func NewHandler(repo friendsRepo, challenges challengesRepo) *Handler {
	return &Handler{
		repo:       repo,
		challenges: challenges,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	friendsRouter := router.PathPrefix("/friends").Subrouter()
	friendsRouter.HandleFunc("/all", handler.HandleAll).Methods("GET", "OPTIONS").Name("friends-data")
	friendsRouter.HandleFunc("/search", handler.HandleSearch).Methods("GET", "OPTIONS").Name("search-users")
	friendsRouter.HandleFunc("/request", handler.HandleRequest).Methods("POST", "OPTIONS").Name("friend-request")
	friendsRouter.HandleFunc("/accept/{id}", handler.HandleAccept).Methods("POST", "OPTIONS").Name("accept-friend-request")
	friendsRouter.HandleFunc("/decline/{id}", handler.HandleDecline).Methods("POST", "OPTIONS").Name("decline-friend-request")
	friendsRouter.HandleFunc("/remove/{userID}", handler.HandleRemove).Methods("DELETE", "OPTIONS").Name("remove-friend")

	challengesRouter := router.PathPrefix("/challenges").Subrouter()
	challengesRouter.HandleFunc("/send", handler.HandleSendChallenge).Methods("POST", "OPTIONS").Name("send-challenge")
	challengesRouter.HandleFunc("/accept/{id}", handler.HandleAcceptChallenge).Methods("POST", "OPTIONS").Name("accept-challenge")
	challengesRouter.HandleFunc("/decline/{id}", handler.HandleDeclineChallenge).Methods("POST", "OPTIONS").Name("decline-challenge")
}

type challengeView struct {
	GoalID      int    `json:"goal_id"`
	From        Friend `json:"from"`
	Type        string `json:"goal_type"`
	Description string `json:"description"`
	Date        string `json:"date"`
}

type friendsDataResponse struct {
	Friends         []Friend         `json:"friends"`
	PendingRequests []PendingRequest `json:"pendingRequests"`
	Challenges      []challengeView  `json:"challenges"`
}

// HandleAll returns the friends screen data in one go: accepted friends,
// incoming friend requests and incoming challenges.
func (handler *Handler) HandleAll(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.friends.all")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, "no can do", http.StatusUnauthorized)
		return
	}

	userFriends, err := handler.repo.Friends(ctx, userID)
	if err != nil {
		log.Errorf("get friends for user %d: %s", userID, err)
		pkg.WriteJSONError(w, "failed to get friends data", http.StatusInternalServerError)
		return
	}

	requests, err := handler.repo.PendingRequests(ctx, userID)
	if err != nil {
		log.Errorf("get pending friend requests for user %d: %s", userID, err)
		pkg.WriteJSONError(w, "failed to get friends data", http.StatusInternalServerError)
		return
	}

	pendingChallenges, err := handler.challenges.PendingChallenges(ctx, userID)
	if err != nil {
		log.Errorf("get pending challenges for user %d: %s", userID, err)
		pkg.WriteJSONError(w, "failed to get friends data", http.StatusInternalServerError)
		return
	}

	now := time.Now()
	for i := range requests {
		requests[i].TimeAgo = TimeAgo(requests[i].CreatedAt, now)
	}

	challenges := make([]challengeView, 0, len(pendingChallenges))
	for _, c := range pendingChallenges {
		challenges = append(challenges, challengeView{
			GoalID:      c.GoalID,
			From:        Friend{UserID: c.FromUserID, Username: c.FromUsername},
			Type:        c.Type,
			Description: challengeDescription(c),
			Date:        TimeAgo(c.DateAdded, now),
		})
	}

	respBytes, err := json.Marshal(friendsDataResponse{
		Friends:         userFriends,
		PendingRequests: requests,
		Challenges:      challenges,
	})
	if err != nil {
		log.Errorf("marshal friends data response: %s", err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respBytes, http.StatusOK)
}

// challengeDescription renders a challenge as a single readable line.
func challengeDescription(c goals.Challenge) string {
	description := c.Name
	if c.TargetValue != 0 {
		description += " - Target: " + strconv.FormatFloat(c.TargetValue, 'f', -1, 64)
		if c.MetricType != goals.MetricNumeric {
			description += " " + c.MetricType
		}
	}
	if c.EndDate != nil {
		description += fmt.Sprintf(" by %s", *c.EndDate)
	}
	return description
}

type searchUsersResponse struct {
	Users []SearchResult `json:"users"`
}

func (handler *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.friends.search")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, "no can do", http.StatusUnauthorized)
		return
	}

	query := r.URL.Query().Get("query")
	if query == "" {
		pkg.WriteJSONError(w, "query parameter required", http.StatusBadRequest)
		return
	}

	results, err := handler.repo.SearchUsers(ctx, userID, query)
	if err != nil {
		log.Errorf("search users for user %d: %s", userID, err)
		pkg.WriteJSONError(w, "failed to search users", http.StatusInternalServerError)
		return
	}

	respBytes, err := json.Marshal(searchUsersResponse{Users: results})
	if err != nil {
		log.Errorf("marshal search users response: %s", err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respBytes, http.StatusOK)
}

type friendRequestRequest struct {
	FriendID int `json:"friend_id"`
}

func (handler *Handler) HandleRequest(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.friends.request")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, "no can do", http.StatusUnauthorized)
		return
	}

	var req friendRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warnf("friend request from user %d, decode request: %s", userID, err)
		pkg.WriteJSONError(w, "invalid request", http.StatusBadRequest)
		return
	}

	if req.FriendID == 0 {
		pkg.WriteJSONError(w, "friend id required", http.StatusBadRequest)
		return
	}
	if req.FriendID == userID {
		pkg.WriteJSONError(w, "cannot send friend request to yourself", http.StatusBadRequest)
		return
	}

	if _, err := handler.repo.Request(ctx, userID, req.FriendID); err != nil {
		if errors.Is(err, ErrRequestExists) {
			pkg.WriteJSONError(w, "friend request already exists", http.StatusBadRequest)
			return
		}
		log.Errorf("friend request from user %d to %d: %s", userID, req.FriendID, err)
		pkg.WriteJSONError(w, "failed to send friend request", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, []byte(`{"message": "friend request sent"}`), http.StatusCreated)
}

func (handler *Handler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.friends.accept")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, "no can do", http.StatusUnauthorized)
		return
	}

	friendshipID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		pkg.WriteJSONError(w, "invalid friendship id", http.StatusBadRequest)
		return
	}

	if err := handler.repo.Accept(ctx, userID, friendshipID); err != nil {
		if errors.Is(err, ErrRequestNotFound) {
			pkg.WriteJSONError(w, "friend request not found", http.StatusNotFound)
			return
		}
		log.Errorf("accept friend request %d for user %d: %s", friendshipID, userID, err)
		pkg.WriteJSONError(w, "failed to accept friend request", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponseOK(w, `{"message": "friend request accepted"}`)
}

func (handler *Handler) HandleDecline(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.friends.decline")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, "no can do", http.StatusUnauthorized)
		return
	}

	friendshipID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		pkg.WriteJSONError(w, "invalid friendship id", http.StatusBadRequest)
		return
	}

	if err := handler.repo.Decline(ctx, userID, friendshipID); err != nil {
		if errors.Is(err, ErrRequestNotFound) {
			pkg.WriteJSONError(w, "friend request not found", http.StatusNotFound)
			return
		}
		log.Errorf("decline friend request %d for user %d: %s", friendshipID, userID, err)
		pkg.WriteJSONError(w, "failed to decline friend request", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponseOK(w, `{"message": "friend request declined"}`)
}

func (handler *Handler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.friends.remove")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, "no can do", http.StatusUnauthorized)
		return
	}

	friendUserID, err := strconv.Atoi(mux.Vars(r)["userID"])
	if err != nil {
		pkg.WriteJSONError(w, "invalid user id", http.StatusBadRequest)
		return
	}

	if err := handler.repo.Remove(ctx, userID, friendUserID); err != nil {
		if errors.Is(err, ErrFriendshipNotFound) {
			pkg.WriteJSONError(w, "friendship not found", http.StatusNotFound)
			return
		}
		log.Errorf("remove friend %d for user %d: %s", friendUserID, userID, err)
		pkg.WriteJSONError(w, "failed to remove friend", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponseOK(w, `{"message": "friend removed"}`)
}

type sendChallengeRequest struct {
	FriendID    int      `json:"friend_id"`
	Name        string   `json:"name"`
	Type        string   `json:"goal_type"`
	TargetValue *float64 `json:"target_value"`
	EndDate     *string  `json:"goal_end_date"`
	MetricType  string   `json:"metric_type"`
}

type sendChallengeResponse struct {
	Message string `json:"message"`
	GoalID  int    `json:"goal_id"`
}

// HandleSendChallenge creates a pending goal on a friend's account.
func (handler *Handler) HandleSendChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.friends.sendChallenge")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, "no can do", http.StatusUnauthorized)
		return
	}

	var req sendChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warnf("send challenge from user %d, decode request: %s", userID, err)
		pkg.WriteJSONError(w, "invalid request", http.StatusBadRequest)
		return
	}

	if req.FriendID == 0 || req.Name == "" || req.Type == "" || req.TargetValue == nil {
		pkg.WriteJSONError(w, "missing required fields", http.StatusBadRequest)
		return
	}
	if req.MetricType == "" {
		req.MetricType = goals.MetricNumeric
	}

	areFriends, err := handler.repo.AreFriends(ctx, userID, req.FriendID)
	if err != nil {
		log.Errorf("check friendship between %d and %d: %s", userID, req.FriendID, err)
		pkg.WriteJSONError(w, "failed to send challenge", http.StatusInternalServerError)
		return
	}
	if !areFriends {
		pkg.WriteJSONError(w, "can only send challenges to friends", http.StatusForbidden)
		return
	}

	goalID, err := handler.challenges.CreateChallenge(ctx, userID, goals.Goal{
		UserID:      req.FriendID,
		Name:        req.Name,
		Type:        req.Type,
		TargetValue: *req.TargetValue,
		EndDate:     req.EndDate,
		MetricType:  req.MetricType,
	})
	if err != nil {
		log.Errorf("send challenge from user %d to %d: %s", userID, req.FriendID, err)
		pkg.WriteJSONError(w, "failed to send challenge", http.StatusInternalServerError)
		return
	}

	respBytes, err := json.Marshal(sendChallengeResponse{Message: "challenge sent", GoalID: goalID})
	if err != nil {
		log.Errorf("marshal send challenge response: %s", err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respBytes, http.StatusCreated)
}

func (handler *Handler) HandleAcceptChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.friends.acceptChallenge")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, "no can do", http.StatusUnauthorized)
		return
	}

	goalID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		pkg.WriteJSONError(w, "invalid goal id", http.StatusBadRequest)
		return
	}

	if err := handler.challenges.AcceptChallenge(ctx, userID, goalID); err != nil {
		if errors.Is(err, goals.ErrChallengeNotFound) {
			pkg.WriteJSONError(w, "challenge not found", http.StatusNotFound)
			return
		}
		log.Errorf("accept challenge %d for user %d: %s", goalID, userID, err)
		pkg.WriteJSONError(w, "failed to accept challenge", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponseOK(w, `{"message": "challenge accepted"}`)
}

func (handler *Handler) HandleDeclineChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.friends.declineChallenge")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, "no can do", http.StatusUnauthorized)
		return
	}

	goalID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		pkg.WriteJSONError(w, "invalid goal id", http.StatusBadRequest)
		return
	}

	if err := handler.challenges.DeclineChallenge(ctx, userID, goalID); err != nil {
		if errors.Is(err, goals.ErrChallengeNotFound) {
			pkg.WriteJSONError(w, "challenge not found", http.StatusNotFound)
			return
		}
		log.Errorf("decline challenge %d for user %d: %s", goalID, userID, err)
		pkg.WriteJSONError(w, "failed to decline challenge", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponseOK(w, `{"message": "challenge declined"}`)
}
