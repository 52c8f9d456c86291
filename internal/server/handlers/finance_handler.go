package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/service/reporting"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	maxTrendMonths  = 36
)

// ListFinance answers GET /finance?type=&category=&from=&to=&limit=, newest first.
func (h *APIHandler) ListFinance(c *gin.Context) {
	filter := reporting.FinanceFilter{
		Kind:     models.FinanceKind(c.Query("type")),
		Category: models.Category(c.Query("category")),
	}
	var err error
	if filter.From, err = queryDate(c, "from"); err != nil {
		h.fail(c, err)
		return
	}
	if filter.To, err = queryDate(c, "to"); err != nil {
		h.fail(c, err)
		return
	}
	if filter.Limit, err = queryInt(c, "limit"); err != nil {
		h.fail(c, err)
		return
	}

	records, err := h.reporting.ListFinance(c.Request.Context(), userID(c), filter)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// AddFinanceEntry records a manual income or expense.
func (h *APIHandler) AddFinanceEntry(c *gin.Context) {
	var in models.NewFinanceEntry
	if !h.bind(c, &in) {
		return
	}
	record, err := h.ledger.AddFinanceEntry(c.Request.Context(), userID(c), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

// DeleteFinanceEntry removes a manual entry. Derived entries answer 409.
func (h *APIHandler) DeleteFinanceEntry(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := h.ledger.DeleteFinanceEntry(c.Request.Context(), userID(c), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *APIHandler) FinanceStats(c *gin.Context) {
	stats, err := h.reporting.FinanceStats(c.Request.Context(), userID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *APIHandler) AnimalStats(c *gin.Context) {
	stats, err := h.reporting.AnimalStats(c.Request.Context(), userID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *APIHandler) AnimalsByType(c *gin.Context) {
	counts, err := h.reporting.AnimalsByType(c.Request.Context(), userID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(counts))
}

// MonthlyTrend answers GET /stats/monthly?months=.
func (h *APIHandler) MonthlyTrend(c *gin.Context) {
	months, err := queryInt(c, "months")
	if err != nil {
		h.fail(c, err)
		return
	}
	if months > maxTrendMonths {
		h.fail(c, &models.ValidationError{Field: "months", Message: fmt.Sprintf("must be at most %d", maxTrendMonths)})
		return
	}
	trend, err := h.reporting.MonthlyTrend(c.Request.Context(), userID(c), months)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, trend)
}

func (h *APIHandler) CategoryTotals(c *gin.Context) {
	from, err := queryDate(c, "from")
	if err != nil {
		h.fail(c, err)
		return
	}
	to, err := queryDate(c, "to")
	if err != nil {
		h.fail(c, err)
		return
	}
	totals, err := h.reporting.CategoryTotals(c.Request.Context(), userID(c), from, to)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(totals))
}

func (h *APIHandler) Dashboard(c *gin.Context) {
	dash, err := h.reporting.Snapshot(c.Request.Context(), userID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dash)
}

// Export streams the user's ledger as an XLSX attachment.
func (h *APIHandler) Export(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.reporting.ExportWorkbook(c.Request.Context(), userID(c), &buf); err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="herdbook-%d.xlsx"`, userID(c)))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
