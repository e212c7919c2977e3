package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"storefront/internal/domain"
	cartsvc "storefront/internal/service/cart"
	checkoutsvc "storefront/internal/service/checkout"
	productsvc "storefront/internal/service/product"
)

type handlers struct {
	deps   Deps
	logger *logrus.Logger
}

type addItemRequest struct {
	ProductID string `json:"productId"`
}

func badJSON(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid json: " + err.Error()})
}

func (h *handlers) listProducts(c *gin.Context) {
	products, err := h.deps.Products.List(c.Request.Context(), c.Query("q"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	if products == nil {
		products = []domain.Product{}
	}
	c.JSON(http.StatusOK, products)
}

func (h *handlers) getProduct(c *gin.Context) {
	product, err := h.deps.Products.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *handlers) createProduct(c *gin.Context) {
	var in productsvc.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badJSON(c, err)
		return
	}
	product, err := h.deps.Products.Create(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *handlers) listCategories(c *gin.Context) {
	categories, err := h.deps.Categories.List(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	if categories == nil {
		categories = []domain.Category{}
	}
	c.JSON(http.StatusOK, categories)
}

func (h *handlers) getCart(c *gin.Context) {
	c.JSON(http.StatusOK, toCartResponse(h.deps.Cart.Get(c.Request.Context())))
}

func (h *handlers) updateCart(c *gin.Context) {
	var in cartsvc.UpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badJSON(c, err)
		return
	}
	cart, err := h.deps.Cart.Update(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(cart))
}

func (h *handlers) addCartItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c, err)
		return
	}
	cart, err := h.deps.Cart.AddProduct(c.Request.Context(), req.ProductID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(cart))
}

func (h *handlers) removeCartItem(c *gin.Context) {
	c.JSON(http.StatusOK, toCartResponse(h.deps.Cart.Remove(c.Request.Context(), c.Param("id"))))
}

func (h *handlers) increaseCartItem(c *gin.Context) {
	c.JSON(http.StatusOK, toCartResponse(h.deps.Cart.Increase(c.Request.Context(), c.Param("id"))))
}

func (h *handlers) decreaseCartItem(c *gin.Context) {
	c.JSON(http.StatusOK, toCartResponse(h.deps.Cart.Decrease(c.Request.Context(), c.Param("id"))))
}

func (h *handlers) clearCart(c *gin.Context) {
	c.JSON(http.StatusOK, toCartResponse(h.deps.Cart.Clear(c.Request.Context())))
}

func (h *handlers) checkout(c *gin.Context) {
	var in checkoutsvc.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		badJSON(c, err)
		return
	}
	order, err := h.deps.Checkout.PlaceOrder(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toOrderResponse(*order))
}
