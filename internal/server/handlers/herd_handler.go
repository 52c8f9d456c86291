package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/herdbook/internal/domain/models"
)

// ListAnimals answers GET /animals?status=.
func (h *APIHandler) ListAnimals(c *gin.Context) {
	status := models.AnimalStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		h.fail(c, &models.ValidationError{Field: "status", Message: "must be one of: active, sold, deceased"})
		return
	}
	animals, err := h.ledger.ListAnimals(c.Request.Context(), userID(c), status)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(animals))
}

// CreateAnimal records a purchase and its expense entry.
func (h *APIHandler) CreateAnimal(c *gin.Context) {
	var in models.NewAnimal
	if !h.bind(c, &in) {
		return
	}
	animal, err := h.ledger.CreateAnimal(c.Request.Context(), userID(c), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, animal)
}

func (h *APIHandler) GetAnimal(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	animal, err := h.ledger.GetAnimal(c.Request.Context(), userID(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, animal)
}

func (h *APIHandler) UpdateAnimal(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	var upd models.AnimalUpdate
	if !h.bind(c, &upd) {
		return
	}
	animal, err := h.ledger.UpdateAnimal(c.Request.Context(), userID(c), id, upd)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, animal)
}

func (h *APIHandler) DeleteAnimal(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := h.ledger.DeleteAnimal(c.Request.Context(), userID(c), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *APIHandler) ListFeed(c *gin.Context) {
	feed, err := h.ledger.ListFeed(c.Request.Context(), userID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(feed))
}

func (h *APIHandler) CreateFeed(c *gin.Context) {
	var in models.NewFeed
	if !h.bind(c, &in) {
		return
	}
	feed, err := h.ledger.CreateFeed(c.Request.Context(), userID(c), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, feed)
}

func (h *APIHandler) GetFeed(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	feed, err := h.ledger.GetFeed(c.Request.Context(), userID(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, feed)
}

// UpdateFeed edits descriptive fields only; the ledger entry keeps its amount.
func (h *APIHandler) UpdateFeed(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	var upd models.FeedUpdate
	if !h.bind(c, &upd) {
		return
	}
	feed, err := h.ledger.UpdateFeed(c.Request.Context(), userID(c), id, upd)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, feed)
}

func (h *APIHandler) DeleteFeed(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := h.ledger.DeleteFeed(c.Request.Context(), userID(c), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *APIHandler) ListVaccinations(c *gin.Context) {
	list, err := h.ledger.ListVaccinations(c.Request.Context(), userID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(list))
}

func (h *APIHandler) CreateVaccination(c *gin.Context) {
	var in models.NewVaccination
	if !h.bind(c, &in) {
		return
	}
	v, err := h.ledger.CreateVaccination(c.Request.Context(), userID(c), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, v)
}

func (h *APIHandler) UpdateVaccination(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	var upd models.VaccinationUpdate
	if !h.bind(c, &upd) {
		return
	}
	v, err := h.ledger.UpdateVaccination(c.Request.Context(), userID(c), id, upd)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *APIHandler) DeleteVaccination(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := h.ledger.DeleteVaccination(c.Request.Context(), userID(c), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// nonNil keeps empty lists encoded as [] rather than null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
