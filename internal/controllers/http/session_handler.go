package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"pizza-service/internal/apperr"
	"pizza-service/internal/catalog"
	"pizza-service/internal/domain"
	"pizza-service/internal/services"
)

func (h *Handler) loadSession(c *gin.Context) {
	s, err := h.sessions.Get(c.Param("sid"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Set(sessionKey, s)
	c.Next()
}

func session(c *gin.Context) *services.Session {
	return c.MustGet(sessionKey).(*services.Session)
}

func (h *Handler) CreateSession(c *gin.Context) {
	s := h.sessions.Create()
	c.JSON(http.StatusCreated, CreateSessionResponse{SessionID: s.ID})
}

func (h *Handler) GetSession(c *gin.Context) {
	c.JSON(http.StatusOK, session(c).Snapshot())
}

func (h *Handler) DeleteSession(c *gin.Context) {
	if err := h.sessions.Delete(session(c).ID); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) AddToCart(c *gin.Context) {
	var req AddToCartRequest
	if !h.bind(c, &req, false) {
		return
	}
	req.ConfigureRequest = req.withDefaults()

	p, ok := catalog.FindPizza(req.PizzaID)
	if !ok {
		h.fail(c, fmt.Errorf("pizza %s: %w", req.PizzaID, apperr.ErrPizzaNotFound))
		return
	}
	toppings, err := catalog.ResolveToppings(req.ToppingIDs)
	if err != nil {
		h.fail(c, err)
		return
	}
	item, err := services.NewLineItem(p, domain.Size(req.Size), req.Crust, toppings)
	if err != nil {
		h.fail(c, err)
		return
	}
	if req.Quantity > 0 {
		item.Quantity = req.Quantity
	}

	h.addItem(c, item)
}

// AddRecommended adds a pizza from the session's recommendation slot at the
// default size and crust.
func (h *Handler) AddRecommended(c *gin.Context) {
	s := session(c)
	p, ok := s.Recommendation(c.Param("rid"))
	if !ok {
		h.fail(c, fmt.Errorf("recommendation %s: %w", c.Param("rid"), apperr.ErrPizzaNotFound))
		return
	}
	item, err := services.NewRecommendedLineItem(p)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.addItem(c, item)
}

func (h *Handler) addItem(c *gin.Context, item domain.LineItem) {
	snap, err := session(c).AddToCart(item)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, snap)
}

func (h *Handler) GetCartItem(c *gin.Context) {
	item, ok := session(c).Item(c.Param("cartId"))
	if !ok {
		h.fail(c, fmt.Errorf("cart item %s: %w", c.Param("cartId"), apperr.ErrItemNotFound))
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler) UpdateQuantity(c *gin.Context) {
	var req UpdateQuantityRequest
	if !h.bind(c, &req, false) {
		return
	}
	c.JSON(http.StatusOK, session(c).UpdateQuantity(c.Param("cartId"), *req.Delta))
}

func (h *Handler) RemoveFromCart(c *gin.Context) {
	c.JSON(http.StatusOK, session(c).RemoveFromCart(c.Param("cartId")))
}

func (h *Handler) ClearCart(c *gin.Context) {
	c.JSON(http.StatusOK, session(c).ClearCart())
}

func (h *Handler) ToggleFavorite(c *gin.Context) {
	id := c.Param("pizzaId")
	if _, ok := catalog.FindPizza(id); !ok {
		h.fail(c, fmt.Errorf("pizza %s: %w", id, apperr.ErrPizzaNotFound))
		return
	}
	c.JSON(http.StatusOK, session(c).ToggleFavorite(id))
}

func (h *Handler) Recommend(c *gin.Context) {
	var req RecommendRequest
	if !h.bind(c, &req, true) {
		return
	}
	rec, err := h.recommender.RecommendForSession(c.Request.Context(), session(c), req.Prompt)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) Checkout(c *gin.Context) {
	order, err := h.checkout.Checkout(c.Request.Context(), session(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *Handler) GetCurrentOrder(c *gin.Context) {
	progress, ok := session(c).CurrentOrder()
	if !ok {
		h.fail(c, apperr.ErrOrderNotFound)
		return
	}
	c.JSON(http.StatusOK, progress)
}

func (h *Handler) StopTracking(c *gin.Context) {
	s := session(c)
	if err := h.checkout.StopTracking(s); err != nil {
		h.fail(c, err)
		return
	}
	progress, _ := s.CurrentOrder()
	c.JSON(http.StatusOK, progress)
}

func (h *Handler) ListSessionOrders(c *gin.Context) {
	orders, err := h.orders.GetOrdersBySession(c.Request.Context(), session(c).ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}
