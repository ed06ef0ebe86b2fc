package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pizza-service/internal/apperr"
	"pizza-service/internal/services"
)

const sessionKey = "session"

var errInvalidRequest = errors.New("invalid request")

type Handler struct {
	sessions    *services.SessionManager
	recommender *services.Recommender
	checkout    *services.CheckoutService
	orders      *services.OrderService
	log         *zap.Logger
}

func NewHandler(sm *services.SessionManager, r *services.Recommender, cs *services.CheckoutService, o *services.OrderService, log *zap.Logger) *Handler {
	return &Handler{
		sessions:    sm,
		recommender: r,
		checkout:    cs,
		orders:      o,
		log:         log,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/healthz", h.Health)

	catalog := r.Group("/catalog")
	catalog.GET("/pizzas", h.ListPizzas)
	catalog.GET("/pizzas/:id", h.GetPizza)
	catalog.POST("/pizzas/:id/quote", h.QuotePizza)
	catalog.GET("/toppings", h.ListToppings)
	catalog.GET("/crusts", h.ListCrusts)

	r.POST("/sessions", h.CreateSession)
	s := r.Group("/sessions/:sid", h.loadSession)
	s.GET("", h.GetSession)
	s.DELETE("", h.DeleteSession)
	s.POST("/cart", h.AddToCart)
	s.DELETE("/cart", h.ClearCart)
	s.POST("/cart/recommended/:rid", h.AddRecommended)
	s.GET("/cart/:cartId", h.GetCartItem)
	s.PATCH("/cart/:cartId", h.UpdateQuantity)
	s.DELETE("/cart/:cartId", h.RemoveFromCart)
	s.POST("/favorites/:pizzaId", h.ToggleFavorite)
	s.POST("/recommendations", h.Recommend)
	s.POST("/checkout", h.Checkout)
	s.GET("/order", h.GetCurrentOrder)
	s.DELETE("/order/tracking", h.StopTracking)
	s.GET("/orders", h.ListSessionOrders)

	r.GET("/orders/:id", h.GetOrderByID)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", Sessions: h.sessions.Len()})
}

func (h *Handler) GetOrderByID(c *gin.Context) {
	o, err := h.orders.GetOrderByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// fail writes err as a JSON error body with the status its kind maps to.
func (h *Handler) fail(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	kind := apperr.Kind(err)
	if errors.Is(err, errInvalidRequest) {
		status, kind = http.StatusBadRequest, "invalid_request"
	}
	if status >= http.StatusInternalServerError {
		h.log.Error("request failed",
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.Error(err),
		)
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: ErrorBody{Kind: kind, Message: err.Error()},
	})
}

// bind decodes the JSON body into req. An empty body is accepted when
// allowEmpty is set.
func (h *Handler) bind(c *gin.Context, req any, allowEmpty bool) bool {
	if allowEmpty && c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(req); err != nil {
		h.fail(c, fmt.Errorf("%w: %v", errInvalidRequest, err))
		return false
	}
	return true
}
