package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/username/catcost/backend/src/database"
	"github.com/username/catcost/backend/src/logger"
	"github.com/username/catcost/backend/src/security"
	"github.com/username/catcost/backend/src/utils"
)

type UserHandler struct {
	authService *security.AuthService
}

func NewUserHandler(authService *security.AuthService) *UserHandler {
	return &UserHandler{authService: authService}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *UserHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if req.Username == "" || len(req.Password) < 8 {
		utils.SendJSONError(w, "Username is required and password must be at least 8 characters", http.StatusBadRequest)
		return
	}

	hashed, err := h.authService.HashPassword(req.Password)
	if err != nil {
		logger.L.Error("Failed to hash password", "error", err)
		utils.SendJSONError(w, "Failed to register user", http.StatusInternalServerError)
		return
	}

	res, err := database.DB.Exec("INSERT INTO users (username, password) VALUES (?, ?)", req.Username, hashed)
	if err != nil {
		logger.L.Warn("User registration failed", "username", req.Username, "error", err)
		utils.SendJSONError(w, "Username already taken", http.StatusConflict)
		return
	}
	userID, _ := res.LastInsertId()

	logger.L.Info("User registered", "userID", userID, "username", req.Username)
	utils.SendJSON(w, map[string]any{"id": userID, "username": req.Username}, http.StatusCreated)
}

func (h *UserHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	var (
		userID   int64
		password string
	)
	err := database.DB.QueryRow("SELECT id, password FROM users WHERE username = ?", req.Username).
		Scan(&userID, &password)
	if errors.Is(err, sql.ErrNoRows) {
		utils.SendJSONError(w, "Invalid username or password", http.StatusUnauthorized)
		return
	}
	if err != nil {
		logger.L.Error("Login query failed", "error", err)
		utils.SendJSONError(w, "Login failed", http.StatusInternalServerError)
		return
	}

	if err := h.authService.CompareHashAndPassword(password, req.Password); err != nil {
		utils.SendJSONError(w, "Invalid username or password", http.StatusUnauthorized)
		return
	}

	token, err := h.authService.GenerateToken(strconv.FormatInt(userID, 10))
	if err != nil {
		logger.L.Error("Failed to generate token", "userID", userID, "error", err)
		utils.SendJSONError(w, "Login failed", http.StatusInternalServerError)
		return
	}

	logger.L.Info("User logged in", "userID", userID)
	utils.SendJSON(w, map[string]any{"access_token": token, "token_type": "Bearer"}, http.StatusOK)
}
