package handler

import (
	"log/slog"
	"net/http"

	"identity-hook/internal/domain"
	"identity-hook/internal/usecase"

	"github.com/labstack/echo/v4"
)

// RegisterHandler handles the user-created hook invoked by the identity
// platform when a new account is created.
type RegisterHandler struct {
	uc *usecase.RegisterAccount
}

// NewRegisterHandler creates a new register handler.
func NewRegisterHandler(uc *usecase.RegisterAccount) *RegisterHandler {
	return &RegisterHandler{uc: uc}
}

// registerResponse wraps the claims the platform attaches to the account.
type registerResponse struct {
	CustomClaims *domain.CustomClaims `json:"customClaims"`
}

// Handle processes POST /hooks/v1/user-created.
func (h *RegisterHandler) Handle(c echo.Context) error {
	ctx := c.Request().Context()

	var account domain.Account
	if err := c.Bind(&account); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid account payload")
	}

	if account.UID == "" || account.Email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "account uid and email are required")
	}

	slog.InfoContext(ctx, "account created",
		"uid", account.UID,
		"email", account.Email,
		"tenant_id", account.TenantID,
		"provider_id", account.FirstProviderID())

	claims, err := h.uc.Execute(ctx, &account)
	if err != nil {
		status, body := mapDomainError(err)
		return c.JSON(status, body)
	}

	return c.JSON(http.StatusOK, registerResponse{CustomClaims: claims})
}
