package httpserver

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"storefront/internal/domain"
	applog "storefront/internal/logger"
	cartsvc "storefront/internal/service/cart"
	checkoutsvc "storefront/internal/service/checkout"
	productsvc "storefront/internal/service/product"
)

type productService interface {
	List(ctx context.Context, query string) ([]domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, in productsvc.CreateInput) (*domain.Product, error)
}

type categoryService interface {
	List(ctx context.Context) ([]domain.Category, error)
}

type cartService interface {
	Get(ctx context.Context) domain.Cart
	AddProduct(ctx context.Context, productID string) (domain.Cart, error)
	Update(ctx context.Context, in cartsvc.UpdateInput) (domain.Cart, error)
	Remove(ctx context.Context, productID string) domain.Cart
	Increase(ctx context.Context, productID string) domain.Cart
	Decrease(ctx context.Context, productID string) domain.Cart
	Clear(ctx context.Context) domain.Cart
}

type checkoutService interface {
	PlaceOrder(ctx context.Context, in checkoutsvc.Input) (*domain.Order, error)
}

type readiness interface {
	Ready() bool
}

// Deps are the services the router dispatches to.
type Deps struct {
	Products   productService
	Categories categoryService
	Cart       cartService
	Checkout   checkoutService
	Ready      readiness
}

// buildRouter wires routes for the API.
func buildRouter(logger *logrus.Logger, deps Deps) *gin.Engine {
	logger = applog.OrDiscard(logger)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept"},
		MaxAge:          12 * time.Hour,
	}))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(deps.Ready))

	h := &handlers{deps: deps, logger: logger}

	router.GET("/products", h.listProducts)
	router.POST("/products", h.createProduct)
	router.GET("/products/:id", h.getProduct)
	router.GET("/categories", h.listCategories)

	cart := router.Group("/cart")
	cart.GET("", h.getCart)
	cart.POST("", h.updateCart)
	cart.DELETE("", h.clearCart)
	cart.POST("/items", h.addCartItem)
	cart.DELETE("/items/:id", h.removeCartItem)
	cart.POST("/items/:id/increase", h.increaseCartItem)
	cart.POST("/items/:id/decrease", h.decreaseCartItem)

	router.POST("/checkout", h.checkout)

	return router
}
