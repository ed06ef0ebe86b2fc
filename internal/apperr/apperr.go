// Package apperr holds the service error taxonomy and its mapping onto
// error kinds and HTTP status codes.
package apperr

import (
	"context"
	"errors"
	"net/http"
)

var (
	ErrInvalidConfiguration   = errors.New("invalid configuration")
	ErrPizzaNotFound          = errors.New("pizza not found")
	ErrToppingNotFound        = errors.New("topping not found")
	ErrItemNotFound           = errors.New("item not found")
	ErrSessionNotFound        = errors.New("session not found")
	ErrOrderNotFound          = errors.New("order not found")
	ErrEmptyCart              = errors.New("cart is empty")
	ErrInvalidPrompt          = errors.New("invalid prompt")
	ErrDuplicateCartID        = errors.New("duplicate cart id")
	ErrRecommendationInFlight = errors.New("recommendation already in progress")
	ErrCheckoutInProgress     = errors.New("checkout already in progress")
	ErrCartChanged            = errors.New("cart changed during checkout")
)

func Kind(err error) string {
	switch {
	case err == nil:
		return ""

	case errors.Is(err, ErrInvalidConfiguration):
		return "invalid_configuration"

	case errors.Is(err, ErrPizzaNotFound):
		return "pizza_not_found"

	case errors.Is(err, ErrToppingNotFound):
		return "topping_not_found"

	case errors.Is(err, ErrItemNotFound):
		return "item_not_found"

	case errors.Is(err, ErrSessionNotFound):
		return "session_not_found"

	case errors.Is(err, ErrOrderNotFound):
		return "order_not_found"

	case errors.Is(err, ErrEmptyCart):
		return "empty_cart"

	case errors.Is(err, ErrInvalidPrompt):
		return "invalid_prompt"

	case errors.Is(err, ErrRecommendationInFlight):
		return "recommendation_in_flight"

	case errors.Is(err, ErrCheckoutInProgress):
		return "checkout_in_progress"

	case errors.Is(err, ErrCartChanged):
		return "cart_changed"

	case errors.Is(err, ErrDuplicateCartID):
		return "duplicate_cart_id"

	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"

	case errors.Is(err, context.Canceled):
		return "canceled"

	default:
		return "internal"
	}
}

func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK

	case errors.Is(err, ErrInvalidConfiguration),
		errors.Is(err, ErrEmptyCart),
		errors.Is(err, ErrInvalidPrompt):
		return http.StatusBadRequest

	case errors.Is(err, ErrPizzaNotFound),
		errors.Is(err, ErrToppingNotFound),
		errors.Is(err, ErrItemNotFound),
		errors.Is(err, ErrSessionNotFound),
		errors.Is(err, ErrOrderNotFound):
		return http.StatusNotFound

	case errors.Is(err, ErrRecommendationInFlight),
		errors.Is(err, ErrCheckoutInProgress),
		errors.Is(err, ErrCartChanged):
		return http.StatusConflict

	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout

	case errors.Is(err, context.Canceled):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}
