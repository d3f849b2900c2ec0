package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"banner-earn-client/internal/banner"
	apperrors "banner-earn-client/internal/common/errors"
	"banner-earn-client/internal/notify"
	"banner-earn-client/internal/service/wallet"
	"banner-earn-client/internal/withdraw"
)

// Handler wires the UI-facing endpoints to the wallet service.
type Handler struct {
	wallet  *wallet.Service
	banners *banner.Catalog
	alerts  *notify.Center
}

func NewHandler(walletSvc *wallet.Service, banners *banner.Catalog, alerts *notify.Center) *Handler {
	return &Handler{wallet: walletSvc, banners: banners, alerts: alerts}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Login handles the login form submission.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.Wrap(err, apperrors.ErrCodeValidation, "Invalid request body"))
		return
	}
	if req.Email == "" || req.Password == "" {
		c.Error(apperrors.New(apperrors.ErrCodeValidation, "Email and password are required"))
		return
	}

	user, err := h.wallet.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}

	message := fmt.Sprintf("Welcome back, %s!", user.Name)
	h.alerts.Publish(notify.LevelSuccess, message)
	c.JSON(http.StatusOK, gin.H{"user": user, "message": message})
}

// Register handles the signup form submission.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.Wrap(err, apperrors.ErrCodeValidation, "Invalid request body"))
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		c.Error(apperrors.New(apperrors.ErrCodeValidation, "Name, email and password are required"))
		return
	}
	if req.ConfirmPassword != "" && req.Password != req.ConfirmPassword {
		c.Error(apperrors.New(apperrors.ErrCodeValidation, "Passwords do not match"))
		return
	}

	user, err := h.wallet.Register(c.Request.Context(), req.Name, req.Email, req.Phone, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}

	message := fmt.Sprintf("Welcome to BannerEarn, %s! You have received ₹10 bonus!", user.Name)
	h.alerts.Publish(notify.LevelSuccess, message)
	c.JSON(http.StatusCreated, gin.H{"user": user, "message": message})
}

// Logout ends the session and clears the persisted cache.
func (h *Handler) Logout(c *gin.Context) {
	if err := h.wallet.Logout(c.Request.Context()); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Session restores and revalidates the persisted session on page reload.
func (h *Handler) Session(c *gin.Context) {
	result, err := h.wallet.Restore(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	if result.Session == nil {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"user":          result.Session,
		"stale":         result.Stale,
	})
}

type bannerView struct {
	banner.Banner
	Clicked bool `json:"clicked"`
}

// ListBanners returns the banner catalog with claim state, the pure render
// input for the UI.
func (h *Handler) ListBanners(c *gin.Context) {
	states := h.wallet.BannerStates()
	views := make([]bannerView, 0)
	for _, b := range h.banners.List() {
		views = append(views, bannerView{Banner: b, Clicked: states[b.ID]})
	}
	c.JSON(http.StatusOK, gin.H{"banners": views})
}

// ClickBanner claims the reward for one banner. A locally detected duplicate
// returns an informational notice, not an error.
func (h *Handler) ClickBanner(c *gin.Context) {
	id := c.Param("id")
	if !h.banners.Has(id) {
		c.Error(apperrors.New(apperrors.ErrCodeNotFound, "Unknown banner"))
		return
	}

	result, err := h.wallet.ClickBanner(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}

	if result.AlreadyClaimed {
		message := "This banner has already been clicked today"
		h.alerts.Publish(notify.LevelInfo, message)
		c.JSON(http.StatusOK, gin.H{
			"user":           result.Session,
			"alreadyClicked": true,
			"message":        message,
		})
		return
	}

	message := "₹1 has been added to your wallet!"
	h.alerts.Publish(notify.LevelSuccess, message)
	c.JSON(http.StatusOK, gin.H{"user": result.Session, "message": message})
}

// RefreshBanners resets local claim state only; the ledger service keeps
// rejecting same-day duplicates.
func (h *Handler) RefreshBanners(c *gin.Context) {
	h.wallet.RefreshBanners()
	message := "Banners refreshed! You can click them again."
	h.alerts.Publish(notify.LevelInfo, message)
	c.JSON(http.StatusOK, gin.H{"message": message})
}

// Withdraw handles the withdrawal form submission.
func (h *Handler) Withdraw(c *gin.Context) {
	var req withdraw.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.Wrap(err, apperrors.ErrCodeValidation, "Invalid request body"))
		return
	}

	user, err := h.wallet.Withdraw(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}

	message := fmt.Sprintf(
		"Withdrawal request of ₹%.0f submitted successfully! It will be processed within 24-48 hours.",
		req.Amount)
	h.alerts.Publish(notify.LevelSuccess, message)
	c.JSON(http.StatusOK, gin.H{"user": user, "message": message})
}

// Transactions returns the history in server order. An empty history is an
// explicit empty state, never an error.
func (h *Handler) Transactions(c *gin.Context) {
	transactions, err := h.wallet.Transactions(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}

	resp := gin.H{"transactions": transactions}
	if len(transactions) == 0 {
		resp["message"] = "No transactions yet"
	}
	c.JSON(http.StatusOK, resp)
}

// Alerts returns the active notices.
func (h *Handler) Alerts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"alerts": h.alerts.Active()})
}

// DismissAlert cancels an alert's timer and removes it.
func (h *Handler) DismissAlert(c *gin.Context) {
	if !h.alerts.Dismiss(c.Param("id")) {
		c.Error(apperrors.New(apperrors.ErrCodeNotFound, "Unknown alert"))
		return
	}
	c.Status(http.StatusNoContent)
}

// fail surfaces a failure both on the HTTP response and as a UI alert,
// keeping the server-supplied message verbatim.
func (h *Handler) fail(c *gin.Context, err error) {
	if appErr, ok := apperrors.AsAppError(err); ok {
		h.alerts.Publish(notify.LevelError, appErr.Message)
	}
	c.Error(err)
}
