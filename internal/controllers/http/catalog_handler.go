package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"pizza-service/internal/apperr"
	"pizza-service/internal/catalog"
	"pizza-service/internal/domain"
	"pizza-service/internal/pricing"
)

func (h *Handler) ListPizzas(c *gin.Context) {
	category := c.Query("category")
	if category != "" && category != "All" && !domain.Category(category).Valid() {
		h.fail(c, fmt.Errorf("category %q: %w", category, apperr.ErrInvalidConfiguration))
		return
	}
	c.JSON(http.StatusOK, catalog.FilterByCategory(category))
}

func (h *Handler) GetPizza(c *gin.Context) {
	p, ok := catalog.FindPizza(c.Param("id"))
	if !ok {
		h.fail(c, fmt.Errorf("pizza %s: %w", c.Param("id"), apperr.ErrPizzaNotFound))
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) ListToppings(c *gin.Context) {
	c.JSON(http.StatusOK, catalog.ListToppings())
}

func (h *Handler) ListCrusts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"crusts": catalog.Crusts(), "default": domain.DefaultCrust})
}

// QuotePizza prices a configuration without touching any cart.
func (h *Handler) QuotePizza(c *gin.Context) {
	var req ConfigureRequest
	if !h.bind(c, &req, true) {
		return
	}
	req = req.withDefaults()

	p, ok := catalog.FindPizza(c.Param("id"))
	if !ok {
		h.fail(c, fmt.Errorf("pizza %s: %w", c.Param("id"), apperr.ErrPizzaNotFound))
		return
	}
	toppings, err := catalog.ResolveToppings(req.ToppingIDs)
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := pricing.ValidateCrust(req.Crust); err != nil {
		h.fail(c, err)
		return
	}
	size := domain.Size(req.Size)
	unit, err := pricing.LineUnitPrice(p, size, toppings)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, QuoteResponse{
		PizzaID:   p.ID,
		Size:      size,
		Crust:     req.Crust,
		Toppings:  toppings,
		UnitPrice: unit,
	})
}
