package httpserver

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"storefront/internal/catalog"
	"storefront/internal/domain"
	"storefront/internal/price"
)

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

type cartLineResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Price       string `json:"price"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	Image       string `json:"image,omitempty"`
	Quantity    int    `json:"quantity"`
	LineTotal   string `json:"lineTotal"`
}

type cartResponse struct {
	Lines      []cartLineResponse `json:"lines"`
	ItemCount  int                `json:"itemCount"`
	Total      string             `json:"total"`
	TotalCents int64              `json:"totalCents"`
}

type orderResponse struct {
	ID            string             `json:"id"`
	Shipping      domain.Shipping    `json:"shipping"`
	PaymentMethod string             `json:"paymentMethod"`
	Lines         []cartLineResponse `json:"lines"`
	ItemCount     int                `json:"itemCount"`
	Total         string             `json:"total"`
	TotalCents    int64              `json:"totalCents"`
	CreatedAt     time.Time          `json:"createdAt"`
}

func toLineResponses(lines []domain.CartLine) []cartLineResponse {
	out := make([]cartLineResponse, 0, len(lines))
	for _, l := range lines {
		out = append(out, cartLineResponse{
			ID:          l.ID,
			Name:        l.Name,
			Price:       l.Price,
			Description: l.Description,
			Category:    l.Category,
			Image:       l.Image,
			Quantity:    l.Quantity,
			LineTotal:   price.FormatCents(l.TotalCents()),
		})
	}
	return out
}

func toCartResponse(c domain.Cart) cartResponse {
	return cartResponse{
		Lines:      toLineResponses(c.Lines),
		ItemCount:  c.ItemCount,
		Total:      c.Total(),
		TotalCents: c.TotalCents,
	}
}

func toOrderResponse(o domain.Order) orderResponse {
	return orderResponse{
		ID:            o.ID,
		Shipping:      o.Shipping,
		PaymentMethod: string(o.PaymentMethod),
		Lines:         toLineResponses(o.Lines),
		ItemCount:     o.ItemCount,
		Total:         price.FormatCents(o.TotalCents),
		TotalCents:    o.TotalCents,
		CreatedAt:     o.CreatedAt,
	}
}

// writeError maps service errors onto status codes.
func (h *handlers) writeError(c *gin.Context, err error) {
	var ve *domain.ValidationError
	var se *catalog.StatusError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, errorResponse{Error: ve.Message, Field: ve.Field})
	case errors.Is(err, domain.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Error: "not found"})
	case errors.Is(err, catalog.ErrUnavailable), errors.As(err, &se):
		h.logger.Warnf("http: %s %s catalog error: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusBadGateway, errorResponse{Error: "catalog unavailable"})
	default:
		h.logger.Errorf("http: %s %s error: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}
