package handler

import (
    "context"  // provides context with cancellation for DB calls
    "errors"   // sentinel matching on repository errors
    "net/http" // HTTP status codes and primitives
    "strings"  // string manipulation utilities
    "time"     // timeouts for DB calls

    "github.com/labstack/echo/v4" // Echo framework for HTTP routing
    "github.com/rs/zerolog/log"   // structured logging

    "github.com/iliyamo/bowling-lane-reservation/internal/config"     // app configuration
    "github.com/iliyamo/bowling-lane-reservation/internal/middleware" // context keys
    "github.com/iliyamo/bowling-lane-reservation/internal/model"      // user model and roles
    "github.com/iliyamo/bowling-lane-reservation/internal/repository" // repository sentinels
    "github.com/iliyamo/bowling-lane-reservation/internal/utils"      // hashing, token issuing
)

// UserStore is the subset of repository.UserRepo used by AuthHandler.
type UserStore interface {
    Create(ctx context.Context, name, email, password, role string, cost int) (uint64, error)
    GetByEmail(ctx context.Context, email string) (model.User, error)
    GetByID(ctx context.Context, id uint64) (model.User, error)
}

// TokenStore is the subset of repository.TokenRepo used by AuthHandler.
type TokenStore interface {
    StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
    ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error)
    // RevokeByHash returns repository.ErrTokenInvalid when the token was
    // unknown or already revoked.
    RevokeByHash(ctx context.Context, tokenHash string) error
    RevokeAllForUser(ctx context.Context, userID uint64) error
}

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
    Cfg    config.Config
    Users  UserStore
    Tokens TokenStore
}

func NewAuthHandler(cfg config.Config, u UserStore, t TokenStore) *AuthHandler {
    return &AuthHandler{Cfg: cfg, Users: u, Tokens: t}
}

// ----- DTOs -----

type registerReq struct {
    Name     string `json:"name" validate:"required"`
    Email    string `json:"email" validate:"required,email"`
    Password string `json:"password" validate:"required,min=6"`
}
type loginReq struct {
    Email    string `json:"email" validate:"required"`
    Password string `json:"password" validate:"required"`
}
type refreshReq struct {
    RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
    Token   string    `json:"token"`
    Expires time.Time `json:"expires"`
}
type userPart struct {
    ID    uint64 `json:"id"`
    Name  string `json:"name"`
    Email string `json:"email"`
    Role  string `json:"role"`
}

// authResp keeps the flat "token" field older clients read next to the
// access/refresh pair.
type authResp struct {
    Status  string    `json:"status"`
    User    userPart  `json:"user"`
    Token   string    `json:"token"`
    Access  tokenPart `json:"access"`
    Refresh tokenPart `json:"refresh"`
}

// issue creates an access/refresh pair for u and stores the refresh hash.
func (h *AuthHandler) issue(ctx context.Context, u model.User) (authResp, error) {
    access, err := utils.NewAccessToken(h.Cfg.JWTSecret, utils.Identity{
        UserID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role,
    }, h.Cfg.AccessTTLMin)
    if err != nil {
        return authResp{}, err
    }
    refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
    if err != nil {
        return authResp{}, err
    }
    if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
        return authResp{}, err
    }
    return authResp{
        Status:  "success",
        User:    userPart{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role},
        Token:   access.Token,
        Access:  tokenPart{Token: access.Token, Expires: access.Exp},
        Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, // raw back to client
    }, nil
}

// Register: create a CUSTOMER account and return tokens immediately.
// Staff accounts are only created by the startup bootstrap.
func (h *AuthHandler) Register(c echo.Context) error {
    var req registerReq
    if err := c.Bind(&req); err != nil {
        return fail(c, http.StatusBadRequest, "invalid body")
    }
    req.Name = strings.TrimSpace(req.Name)
    req.Email = strings.ToLower(strings.TrimSpace(req.Email))
    if err := validate.Struct(req); err != nil {
        return fail(c, http.StatusBadRequest, "name, valid email and password (min 6 characters) are required")
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    uid, err := h.Users.Create(ctx, req.Name, req.Email, req.Password, model.RoleCustomer, h.Cfg.BcryptCost)
    if err != nil {
        if errors.Is(err, repository.ErrEmailExists) {
            return fail(c, http.StatusConflict, "email already registered")
        }
        log.Error().Err(err).Msg("create user")
        return fail(c, http.StatusInternalServerError, "create user failed")
    }

    resp, err := h.issue(ctx, model.User{ID: uid, Name: req.Name, Email: req.Email, Role: model.RoleCustomer})
    if err != nil {
        log.Error().Err(err).Msg("issue tokens")
        return fail(c, http.StatusInternalServerError, "issue tokens failed")
    }
    return c.JSON(http.StatusCreated, resp)
}

// Login: verify credentials and return a new token pair.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if err := c.Bind(&req); err != nil {
        return fail(c, http.StatusBadRequest, "invalid body")
    }
    req.Email = strings.ToLower(strings.TrimSpace(req.Email))
    if err := validate.Struct(req); err != nil {
        return fail(c, http.StatusBadRequest, "email/password required")
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    u, err := h.Users.GetByEmail(ctx, req.Email)
    if err != nil {
        if errors.Is(err, repository.ErrUserNotFound) {
            return fail(c, http.StatusUnauthorized, "invalid credentials")
        }
        log.Error().Err(err).Msg("load user")
        return fail(c, http.StatusInternalServerError, "query failed")
    }
    if !utils.VerifyPassword(u.PasswordHash, req.Password) {
        return fail(c, http.StatusUnauthorized, "invalid credentials")
    }

    resp, err := h.issue(ctx, u)
    if err != nil {
        log.Error().Err(err).Msg("issue tokens")
        return fail(c, http.StatusInternalServerError, "issue tokens failed")
    }
    return c.JSON(http.StatusOK, resp)
}

// Refresh: validate by hash, revoke old, issue new pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
    var req refreshReq
    if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
        return fail(c, http.StatusBadRequest, "refresh_token required")
    }
    hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    userID, err := h.Tokens.ValidateRefresh(ctx, hash)
    if err != nil {
        return fail(c, http.StatusUnauthorized, "invalid refresh token")
    }
    // the revoke is the single winner check for concurrent refreshes
    if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
        if errors.Is(err, repository.ErrTokenInvalid) {
            return fail(c, http.StatusUnauthorized, "invalid refresh token")
        }
        log.Error().Err(err).Msg("revoke refresh token")
        return fail(c, http.StatusInternalServerError, "refresh failed")
    }
    u, err := h.Users.GetByID(ctx, userID)
    if err != nil {
        if errors.Is(err, repository.ErrUserNotFound) {
            return fail(c, http.StatusUnauthorized, "invalid refresh token")
        }
        return fail(c, http.StatusInternalServerError, "load user failed")
    }

    resp, err := h.issue(ctx, u)
    if err != nil {
        log.Error().Err(err).Msg("issue tokens")
        return fail(c, http.StatusInternalServerError, "issue tokens failed")
    }
    return c.JSON(http.StatusOK, resp)
}

// Logout revokes one session when a refresh_token is posted, or every
// session of the caller when only a valid bearer token is presented.
func (h *AuthHandler) Logout(c echo.Context) error {
    var req refreshReq
    _ = c.Bind(&req)
    refreshToken := strings.TrimSpace(req.RefreshToken)

    var (
        uid       uint64
        hasBearer bool
    )
    if auth := c.Request().Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
        if id, err := utils.ParseAccessToken(h.Cfg.JWTSecret, strings.TrimPrefix(auth, "Bearer ")); err == nil && id.UserID != 0 {
            uid, hasBearer = id.UserID, true
        }
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    switch {
    case refreshToken != "":
        hash := utils.HashRefreshRaw(refreshToken)
        if _, err := h.Tokens.ValidateRefresh(ctx, hash); err != nil {
            return fail(c, http.StatusUnauthorized, "invalid refresh token")
        }
        if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
            if errors.Is(err, repository.ErrTokenInvalid) {
                return fail(c, http.StatusUnauthorized, "invalid refresh token")
            }
            return fail(c, http.StatusInternalServerError, "logout failed")
        }
        return c.NoContent(http.StatusNoContent)
    case hasBearer:
        if err := h.Tokens.RevokeAllForUser(ctx, uid); err != nil {
            return fail(c, http.StatusInternalServerError, "logout failed")
        }
        return c.NoContent(http.StatusNoContent)
    }
    return fail(c, http.StatusBadRequest, "provide Authorization header or refresh_token")
}

// Me returns the identity decoded from the access token.
func (h *AuthHandler) Me(c echo.Context) error {
    return c.JSON(http.StatusOK, echo.Map{
        "user_id": c.Get(middleware.CtxUserID),
        "name":    c.Get(middleware.CtxName),
        "email":   c.Get(middleware.CtxEmail),
        "role":    c.Get(middleware.CtxRole),
    })
}
