package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/xeviet/bus-ticketing/internal/config"
	"github.com/xeviet/bus-ticketing/internal/model"
	"github.com/xeviet/bus-ticketing/internal/repository"
	"github.com/xeviet/bus-ticketing/internal/utils"
)

// Token subject kinds stored alongside refresh-token hashes. Staff and
// customer ids live in different tables, so the kind travels with the hash.
const (
	kindCustomer = "customer"
	kindStaff    = "staff"
)

// AuthHandler bundles dependencies for the auth endpoints. One login
// endpoint serves both populations: staff accounts are checked first, then
// customers by email or phone.
type AuthHandler struct {
	Cfg       config.Config
	Customers *repository.CustomerRepo
	Accounts  *repository.AccountRepo
	Tokens    *repository.TokenRepo
}

func NewAuthHandler(cfg config.Config, customers *repository.CustomerRepo, accounts *repository.AccountRepo, tokens *repository.TokenRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Customers: customers, Accounts: accounts, Tokens: tokens}
}

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Password string `json:"password"`
}

type loginReq struct {
	Login    string `json:"login"` // staff username, or customer email/phone
	Password string `json:"password"`
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type identityPart struct {
	ID   uint64 `json:"id"`
	Code string `json:"code,omitempty"`
	Name string `json:"name,omitempty"`
	Role string `json:"role"`
}

type authResp struct {
	User    identityPart `json:"user"`
	Access  tokenPart    `json:"access"`
	Refresh tokenPart    `json:"refresh"`
}

// Register creates a customer account and returns a token pair immediately.
// Staff accounts are provisioned out of band, never through this endpoint.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Phone = strings.TrimSpace(req.Phone)
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.Password == "" || (req.Email == "" && req.Phone == "") {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name, password and email or phone required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cust := &model.Customer{Name: req.Name, Email: req.Email, Phone: req.Phone, Address: req.Address}
	if err := h.Customers.Create(ctx, cust, req.Password, h.Cfg.BcryptCost); err != nil {
		if errors.Is(err, repository.ErrCustomerExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email or phone already registered"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create customer failed"})
	}

	return h.issuePair(c, ctx, http.StatusCreated, kindCustomer, identityPart{
		ID: cust.ID, Code: cust.Code, Name: cust.Name, Role: "CUSTOMER",
	})
}

// Login verifies credentials and returns a fresh token pair. The login field
// is matched against staff usernames before customer emails and phones, so a
// staff member whose username collides with a customer email always gets the
// staff account.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	login := strings.TrimSpace(req.Login)
	if login == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "login/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if acc, err := h.Accounts.GetByUsername(ctx, login); err == nil {
		if !utils.VerifyPassword(acc.PasswordHash, req.Password) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return h.issuePair(c, ctx, http.StatusOK, kindStaff, identityPart{
			ID: acc.ID, Name: acc.Username, Role: acc.Role,
		})
	} else if !errors.Is(err, repository.ErrAccountNotFound) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	cust, err := h.Customers.GetByLogin(ctx, strings.ToLower(login))
	if err != nil {
		if errors.Is(err, repository.ErrCustomerNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !utils.VerifyPassword(cust.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	return h.issuePair(c, ctx, http.StatusOK, kindCustomer, identityPart{
		ID: cust.ID, Code: cust.Code, Name: cust.Name, Role: "CUSTOMER",
	})
}

// Refresh validates by hash, revokes the old token and issues a new pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	kind, subjectID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}
	_ = h.Tokens.RevokeByHash(ctx, hash)

	var who identityPart
	switch kind {
	case kindStaff:
		acc, err := h.Accounts.GetByID(ctx, subjectID)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
		}
		who = identityPart{ID: acc.ID, Name: acc.Username, Role: acc.Role}
	default:
		cust, err := h.Customers.GetByID(ctx, subjectID)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
		}
		who = identityPart{ID: cust.ID, Code: cust.Code, Name: cust.Name, Role: "CUSTOMER"}
	}
	return h.issuePair(c, ctx, http.StatusOK, kind, who)
}

// Logout revokes the presented refresh token. Access tokens stay valid until
// expiry; only the refresh chain is cut.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, _, err := h.Tokens.ValidateRefresh(ctx, hash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
	}
	if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

type profileReq struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// UpdateProfile rewrites the customer's contact details. Email is the login
// anchor and stays immutable here.
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	customerID, ok := userIDFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req profileReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Phone = strings.TrimSpace(req.Phone)
	if req.Name == "" || req.Phone == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and phone required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	err := h.Customers.UpdateProfile(ctx, customerID, req.Name, req.Phone, req.Address)
	switch {
	case err == nil:
		return c.NoContent(http.StatusNoContent)
	case errors.Is(err, repository.ErrCustomerNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "customer not found"})
	case errors.Is(err, repository.ErrCustomerExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": "phone already registered"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update profile failed"})
	}
}

// Me echoes the identity claims of the presented access token.
func (h *AuthHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"user_id": c.Get("user_id"),
		"role":    c.Get("role"),
		"code":    c.Get("code"),
	})
}

func (h *AuthHandler) issuePair(c echo.Context, ctx context.Context, status int, kind string, who identityPart) error {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, who.ID, who.Role, who.Code, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue refresh failed"})
	}
	if err := h.Tokens.StoreRefresh(ctx, kind, who.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save refresh failed"})
	}
	return c.JSON(status, authResp{
		User:    who,
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, // raw goes back to the client once
	})
}
