package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/service/ledger"
	"github.com/mamadbah2/herdbook/internal/service/reporting"
)

// UserHeader carries the caller's user id. Authentication happens upstream.
const UserHeader = "X-User-ID"

const userKey = "herdbook.user_id"

// APIHandler exposes the ledger and reporting services over REST.
type APIHandler struct {
	ledger    *ledger.Service
	reporting *reporting.Service
	logger    *zap.Logger
}

// NewAPIHandler constructs the REST adapter.
func NewAPIHandler(ledgerSvc *ledger.Service, reportingSvc *reporting.Service, logger *zap.Logger) *APIHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &APIHandler{ledger: ledgerSvc, reporting: reportingSvc, logger: logger}
}

// Register mounts every API route on rg. All routes except butchers require
// UserHeader.
func (h *APIHandler) Register(rg *gin.RouterGroup) {
	butchers := rg.Group("/butchers")
	butchers.GET("", h.ListButchers)
	butchers.POST("", h.CreateButcher)
	butchers.GET("/:id", h.GetButcher)
	butchers.PATCH("/:id", h.UpdateButcher)
	butchers.DELETE("/:id", h.DeleteButcher)

	owned := rg.Group("", RequireUser())

	animals := owned.Group("/animals")
	animals.GET("", h.ListAnimals)
	animals.POST("", h.CreateAnimal)
	animals.GET("/:id", h.GetAnimal)
	animals.PATCH("/:id", h.UpdateAnimal)
	animals.DELETE("/:id", h.DeleteAnimal)

	feed := owned.Group("/feed")
	feed.GET("", h.ListFeed)
	feed.POST("", h.CreateFeed)
	feed.GET("/:id", h.GetFeed)
	feed.PATCH("/:id", h.UpdateFeed)
	feed.DELETE("/:id", h.DeleteFeed)

	vaccinations := owned.Group("/vaccinations")
	vaccinations.GET("", h.ListVaccinations)
	vaccinations.POST("", h.CreateVaccination)
	vaccinations.PATCH("/:id", h.UpdateVaccination)
	vaccinations.DELETE("/:id", h.DeleteVaccination)

	sales := owned.Group("/sales")
	sales.GET("", h.ListSales)
	sales.POST("", h.CreateSale)
	sales.GET("/:id", h.GetSale)
	sales.DELETE("/:id", h.DeleteSale)

	finance := owned.Group("/finance")
	finance.GET("", h.ListFinance)
	finance.POST("", h.AddFinanceEntry)
	finance.DELETE("/:id", h.DeleteFinanceEntry)

	stats := owned.Group("/stats")
	stats.GET("/finance", h.FinanceStats)
	stats.GET("/animals", h.AnimalStats)
	stats.GET("/animals-by-type", h.AnimalsByType)
	stats.GET("/monthly", h.MonthlyTrend)
	stats.GET("/categories", h.CategoryTotals)

	owned.GET("/dashboard", h.Dashboard)
	owned.GET("/export", h.Export)
}

// RequireUser rejects requests without a positive numeric UserHeader.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(UserHeader))
		id, err := strconv.ParseInt(raw, 10, 64)
		if raw == "" || err != nil || id <= 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid " + UserHeader + " header"})
			return
		}
		c.Set(userKey, id)
		c.Next()
	}
}

func userID(c *gin.Context) int64 {
	return c.GetInt64(userKey)
}

func pathID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, &models.ValidationError{Field: "id", Message: "must be a positive integer"}
	}
	return id, nil
}

func queryDate(c *gin.Context, key string) (models.Date, error) {
	raw := c.Query(key)
	if raw == "" {
		return models.Date{}, nil
	}
	d, err := models.ParseDate(raw)
	if err != nil {
		return models.Date{}, &models.ValidationError{Field: key, Message: "must be a YYYY-MM-DD date"}
	}
	return d, nil
}

func queryInt(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, &models.ValidationError{Field: key, Message: "must be a non-negative integer"}
	}
	return n, nil
}

// bind decodes the JSON body into dst and answers 400 on malformed input.
func (h *APIHandler) bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.logger.Debug("invalid request body", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return false
	}
	return true
}

// fail maps a service error onto its HTTP status. Storage and unexpected failures
// are logged and answered generically.
func (h *APIHandler) fail(c *gin.Context, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		body := gin.H{"error": verr.Message}
		if verr.Field != "" {
			body["field"] = verr.Field
		}
		c.JSON(http.StatusBadRequest, body)
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrConflict):
		h.logger.Warn("request conflicts with current state", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
