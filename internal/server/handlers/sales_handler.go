package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/herdbook/internal/domain/models"
)

func (h *APIHandler) ListSales(c *gin.Context) {
	sales, err := h.ledger.ListSales(c.Request.Context(), userID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(sales))
}

// CreateSale sells an animal. Selling an animal twice answers 409.
func (h *APIHandler) CreateSale(c *gin.Context) {
	var in models.NewSale
	if !h.bind(c, &in) {
		return
	}
	sale, err := h.ledger.CreateSale(c.Request.Context(), userID(c), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, sale)
}

func (h *APIHandler) GetSale(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	sale, err := h.ledger.GetSale(c.Request.Context(), userID(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sale)
}

// DeleteSale removes the sale and its income entry and returns the animal to the
// herd.
func (h *APIHandler) DeleteSale(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := h.ledger.DeleteSale(c.Request.Context(), userID(c), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *APIHandler) ListButchers(c *gin.Context) {
	butchers, err := h.ledger.ListButchers(c.Request.Context(), c.Query("search"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(butchers))
}

func (h *APIHandler) CreateButcher(c *gin.Context) {
	var in models.NewButcher
	if !h.bind(c, &in) {
		return
	}
	b, err := h.ledger.CreateButcher(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

func (h *APIHandler) GetButcher(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	b, err := h.ledger.GetButcher(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *APIHandler) UpdateButcher(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	var upd models.ButcherUpdate
	if !h.bind(c, &upd) {
		return
	}
	b, err := h.ledger.UpdateButcher(c.Request.Context(), id, upd)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *APIHandler) DeleteButcher(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := h.ledger.DeleteButcher(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
