package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"infobot/internal/repository"
	"infobot/internal/usecases"
)

// Handler serves the keepalive probe and a small admin API over the ledger.
type Handler struct {
	ledger *repository.CreditLedger
}

func NewHandler(ledger *repository.CreditLedger) *Handler {
	return &Handler{ledger: ledger}
}

func SetupRoutes(r *gin.Engine, ledger *repository.CreditLedger, auth *usecases.AuthUsecase, middleware *Middleware) {
	h := NewHandler(ledger)

	r.Use(SecurityHeaders())

	// Keepalive probe for uptime monitors.
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Bot is running!")
	})

	authGroup := r.Group("/api/auth")
	{
		authGroup.POST("/login", func(c *gin.Context) {
			var loginReq struct {
				Password string `json:"password"`
			}
			if err := c.ShouldBindJSON(&loginReq); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
				return
			}
			token, err := auth.Login(loginReq.Password)
			if err != nil {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"token": token})
		})
	}

	api := r.Group("/api")
	api.Use(middleware.AuthRequired())
	api.Use(middleware.RateLimitPerUser(5, 10))
	{
		api.GET("/users", h.GetAllUsers)
		api.GET("/users/:id/history", h.GetUserHistory)
		api.POST("/users/:id/credits", h.AdjustCredits)
		api.GET("/blocked", h.GetBlockedUsers)
	}
}

func (h *Handler) GetAllUsers(c *gin.Context) {
	users, err := h.ledger.ListUsers()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list users"})
		return
	}

	out := make([]gin.H, 0, len(users))
	for _, u := range users {
		out = append(out, gin.H{"user_id": u.ID, "credits": u.Credits})
	}
	c.JSON(http.StatusOK, gin.H{"total": len(users), "users": out})
}

func (h *Handler) GetUserHistory(c *gin.Context) {
	uid, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	entries, err := h.ledger.History(uid, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load history"})
		return
	}

	out := make([]gin.H, 0, len(entries))
	for _, e := range entries {
		out = append(out, gin.H{
			"query":    e.Query,
			"category": e.Category,
			"ts":       e.At.Format("2006-01-02 15:04:05"),
		})
	}
	c.JSON(http.StatusOK, gin.H{"user_id": uid, "history": out})
}

func (h *Handler) AdjustCredits(c *gin.Context) {
	uid, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}

	var req struct {
		Delta int `json:"delta" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if err := h.ledger.EnsureUser(uid); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to adjust credits"})
		return
	}
	balance, err := h.ledger.AdjustBalance(uid, req.Delta)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to adjust credits"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": uid, "credits": balance})
}

func (h *Handler) GetBlockedUsers(c *gin.Context) {
	blocked, err := h.ledger.ListBlocked()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list blocked users"})
		return
	}

	out := make([]gin.H, 0, len(blocked))
	for _, b := range blocked {
		out = append(out, gin.H{
			"user_id":    b.UserID,
			"blocked_by": b.BlockedBy,
			"reason":     b.Reason,
			"blocked_at": b.BlockedAt.Format("2006-01-02 15:04:05"),
			"credits":    b.Credits,
		})
	}
	c.JSON(http.StatusOK, gin.H{"total": len(blocked), "blocked": out})
}
