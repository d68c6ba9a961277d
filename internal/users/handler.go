package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nutritiontrax/nutritiontrax/internal/auth"
	"github.com/nutritiontrax/nutritiontrax/internal/middleware"
	"github.com/nutritiontrax/nutritiontrax/internal/progress"
	"github.com/nutritiontrax/nutritiontrax/internal/telemetry/metrics"
	"github.com/nutritiontrax/nutritiontrax/internal/telemetry/tracing"
	"github.com/nutritiontrax/nutritiontrax/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
)

type usersRepo interface {
	Create(ctx context.Context, username, passwordHash, dob string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	Get(ctx context.Context, id int) (*User, error)
	UpdateProfile(ctx context.Context, id int, nickname, dob *string) error
}

type progressRepo interface {
	Add(ctx context.Context, entry progress.Entry) (*progress.Entry, error)
	Latest(ctx context.Context, userID int) (*progress.Entry, error)
}

type loginManager interface {
	Login(ctx context.Context, userID int, createdAt time.Time) (string, error)
	Logout(ctx context.Context, token string) (bool, error)
}

type Handler struct {
	repo           usersRepo
	progressRepo   progressRepo
	loginManager   loginManager
	loginChecker   auth.Checker
	metricsManager *metrics.Manager
}

func NewHandler(
	repo usersRepo,
	progressRepo progressRepo,
	loginManager loginManager,
	loginChecker auth.Checker,
	metricsManager *metrics.Manager,
) *Handler {
	return &Handler{
		repo:           repo,
		progressRepo:   progressRepo,
		loginManager:   loginManager,
		loginChecker:   loginChecker,
		metricsManager: metricsManager,
	}
}

func (handler *Handler) SetupRoutes(
	mainRouter *mux.Router,
	rateLimiter middleware.RequestRateLimiter,
	loginRateLimitAllowedPerMin int,
) {
	mainRouter.HandleFunc("/session", handler.HandleSession).Methods("GET", "OPTIONS").Name("session")
	mainRouter.HandleFunc("/logout", handler.HandleLogout).Methods("GET", "OPTIONS").Name("logout")
	mainRouter.HandleFunc("/account", handler.HandleAccount).Methods("GET", "OPTIONS").Name("account")
	mainRouter.HandleFunc("/account/update", handler.HandleAccountUpdate).Methods("POST", "OPTIONS").Name("account-update")

	// rate limit the /register and /login endpoints to prevent abuse
	authRouter := mainRouter.NewRoute().Subrouter()
	authRouter.HandleFunc("/register", handler.HandleRegister).Methods("POST", "OPTIONS").Name("register")
	authRouter.HandleFunc("/login", handler.HandleLogin).Methods("POST", "OPTIONS").Name("login")
	authRouter.Use(middleware.RateLimit(rateLimiter, "login", loginRateLimitAllowedPerMin, handler.metricsManager))
}

type authResponse struct {
	Token    string `json:"token"`
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
}

func (handler *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.register")
	defer span.End()

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
		DOB      string `json:"dob"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("register, unmarshal json params: %s", err)
		pkg.WriteJSONError(w, "invalid request", http.StatusBadRequest)
		return
	}

	if err := ValidateUsername(req.Username); err != nil {
		pkg.WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := ValidateDOB(req.DOB); err != nil {
		pkg.WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.Password) < 8 {
		pkg.WriteJSONError(w, "password must be at least 8 characters", http.StatusBadRequest)
		return
	}

	passwordHash, err := pkg.HashPassword(req.Password)
	if err != nil {
		log.Errorf("register, hash password: %s", err)
		pkg.WriteJSONError(w, "registration failed", http.StatusInternalServerError)
		return
	}

	user, err := handler.repo.Create(ctx, req.Username, passwordHash, req.DOB)
	if err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			span.SetStatus(codes.Error, "username-taken")
			pkg.WriteJSONError(w, "username already taken", http.StatusBadRequest)
			return
		}
		log.Errorf("register, create user %s: %s", req.Username, err)
		pkg.WriteJSONError(w, "registration failed", http.StatusInternalServerError)
		return
	}

	if handler.metricsManager != nil {
		handler.metricsManager.CounterRegisteredUsers.Inc()
	}

	// new users are logged in right away
	token, err := handler.loginManager.Login(ctx, user.ID, time.Now())
	if err != nil {
		log.Errorf("register, auto login user %d: %s", user.ID, err)
		pkg.WriteJSONError(w, "registered, but login failed", http.StatusInternalServerError)
		return
	}

	respJson, err := json.Marshal(authResponse{
		Token:    token,
		UserID:   user.ID,
		Username: user.Username,
	})
	if err != nil {
		log.Errorf("register, marshal response: %s", err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	log.Debugf("new user registered: %s", user.Username)
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusCreated)
}

func (handler *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.login")
	defer span.End()

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("login, unmarshal json params: %s", err)
		pkg.WriteJSONError(w, "login failed", http.StatusBadRequest)
		return
	}

	if req.Username == "" || req.Password == "" {
		pkg.WriteJSONError(w, "username and password required", http.StatusBadRequest)
		return
	}

	user, err := handler.repo.GetByUsername(ctx, req.Username)
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			log.Errorf("login, get user %s: %s", req.Username, err)
		}
		span.SetStatus(codes.Error, "wrong-credentials")
		pkg.WriteJSONError(w, "invalid username or password", http.StatusUnauthorized)
		return
	}

	if !pkg.CheckPasswordHash(req.Password, user.PasswordHash) {
		log.Tracef("[password] failed login attempt for user: %s", req.Username)
		span.SetStatus(codes.Error, "wrong-credentials")
		pkg.WriteJSONError(w, "invalid username or password", http.StatusUnauthorized)
		return
	}

	token, err := handler.loginManager.Login(ctx, user.ID, time.Now())
	if err != nil {
		log.Errorf("login failed, generate token error: %s", err)
		pkg.WriteJSONError(w, "generate token error", http.StatusInternalServerError)
		return
	}

	log.Trace("new login success")
	respJson, err := json.Marshal(authResponse{
		Token:    token,
		UserID:   user.ID,
		Username: user.Username,
	})
	if err != nil {
		log.Errorf("login, marshal response: %s", err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, respJson)
}

func (handler *Handler) HandleSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.session")
	defer span.End()

	notLoggedIn := `{"logged_in": false}`

	token := r.Header.Get(auth.TokenHeader)
	if token == "" {
		pkg.WriteJSONResponseOK(w, notLoggedIn)
		return
	}

	userID, err := handler.loginChecker.LoggedUserID(ctx, token)
	if err != nil {
		if !errors.Is(err, auth.ErrNotLoggedIn) {
			log.Errorf("session check: %s", err)
		}
		pkg.WriteJSONResponseOK(w, notLoggedIn)
		return
	}

	user, err := handler.repo.Get(ctx, userID)
	if err != nil {
		log.Errorf("session, get user %d: %s", userID, err)
		pkg.WriteJSONResponseOK(w, notLoggedIn)
		return
	}

	pkg.WriteJSONResponseOK(w, fmt.Sprintf(
		`{"logged_in": true, "user_id": %d, "username": %q}`,
		user.ID, user.Username,
	))
}

func (handler *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.logout")
	defer span.End()

	authToken := r.Header.Get(auth.TokenHeader)
	if authToken == "" {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	loggedOut, err := handler.loginManager.Logout(ctx, authToken)
	if err != nil {
		log.Tracef("[failed logout] => %s: %s", r.URL.Path, err)
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}
	if !loggedOut {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	pkg.WriteTextResponseOK(w, "logged-out")
}

type accountResponse struct {
	Username     string     `json:"username"`
	Nickname     *string    `json:"nickname"`
	DOB          *string    `json:"dob"`
	HeightInches *float64   `json:"height"`
	WeightLbs    *float64   `json:"weight"`
	RecordedAt   *time.Time `json:"recorded_date"`
}

func (handler *Handler) HandleAccount(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.account")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	user, err := handler.repo.Get(ctx, userID)
	if err != nil {
		log.Errorf("account, get user %d: %s", userID, err)
		pkg.WriteJSONError(w, "failed to get account", http.StatusInternalServerError)
		return
	}

	resp := accountResponse{
		Username: user.Username,
		Nickname: user.Nickname,
		DOB:      user.DOB,
	}

	latest, err := handler.progressRepo.Latest(ctx, userID)
	switch {
	case err == nil:
		resp.HeightInches = &latest.HeightInches
		resp.WeightLbs = &latest.WeightLbs
		resp.RecordedAt = &latest.RecordedAt
	case errors.Is(err, progress.ErrNoEntries):
		// no measurements yet, the nulls say it all
	default:
		log.Errorf("account, latest progress for user %d: %s", userID, err)
		pkg.WriteJSONError(w, "failed to get account", http.StatusInternalServerError)
		return
	}

	respJson, err := json.Marshal(resp)
	if err != nil {
		log.Errorf("account, marshal response: %s", err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, respJson)
}

func (handler *Handler) HandleAccountUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.accountUpdate")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	var req struct {
		Nickname     *string  `json:"nickname"`
		DOB          *string  `json:"dob"`
		HeightInches *float64 `json:"height"`
		WeightLbs    *float64 `json:"weight"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("account update, unmarshal json params: %s", err)
		pkg.WriteJSONError(w, "invalid request", http.StatusBadRequest)
		return
	}

	if req.Nickname != nil {
		if err := ValidateNickname(*req.Nickname); err != nil {
			pkg.WriteJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	if req.DOB != nil {
		if err := ValidateDOB(*req.DOB); err != nil {
			pkg.WriteJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	if req.HeightInches != nil {
		if err := ValidateHeight(*req.HeightInches); err != nil {
			pkg.WriteJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	if req.WeightLbs != nil {
		if err := ValidateWeight(*req.WeightLbs); err != nil {
			pkg.WriteJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	if req.Nickname != nil || req.DOB != nil {
		if err := handler.repo.UpdateProfile(ctx, userID, req.Nickname, req.DOB); err != nil {
			log.Errorf("account update, user %d: %s", userID, err)
			pkg.WriteJSONError(w, "failed to update account", http.StatusInternalServerError)
			return
		}
	}

	if req.HeightInches != nil || req.WeightLbs != nil {
		if err := handler.addProgressEntry(ctx, userID, req.HeightInches, req.WeightLbs); err != nil {
			var vErr *valuesRequiredError
			if errors.As(err, &vErr) {
				pkg.WriteJSONError(w, err.Error(), http.StatusBadRequest)
				return
			}
			log.Errorf("account update, add progress for user %d: %s", userID, err)
			pkg.WriteJSONError(w, "failed to update account", http.StatusInternalServerError)
			return
		}
	}

	pkg.WriteJSONResponseOK(w, `{"success": true}`)
}

type valuesRequiredError struct{}

func (e *valuesRequiredError) Error() string {
	return "height and weight are both required on the first entry"
}

// addProgressEntry appends a new measurement row. A missing side is carried
// over from the latest entry, on the very first entry both are required.
func (handler *Handler) addProgressEntry(
	ctx context.Context,
	userID int,
	heightInches, weightLbs *float64,
) error {
	latest, err := handler.progressRepo.Latest(ctx, userID)
	if err != nil {
		if !errors.Is(err, progress.ErrNoEntries) {
			return err
		}
		if heightInches == nil || weightLbs == nil {
			return &valuesRequiredError{}
		}
	}

	if heightInches == nil {
		heightInches = &latest.HeightInches
	}
	if weightLbs == nil {
		weightLbs = &latest.WeightLbs
	}

	_, err = handler.progressRepo.Add(ctx, progress.Entry{
		UserID:       userID,
		HeightInches: *heightInches,
		WeightLbs:    *weightLbs,
		RecordedAt:   time.Now(),
	})
	return err
}
