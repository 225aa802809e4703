package httpserver

import (
	"context"
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"tarzi-api/internal/domain"
	cartsvc "tarzi-api/internal/service/cart"
	ordersvc "tarzi-api/internal/service/order"
)

// Deps carries the services the routes are built on. Interfaces are declared
// here, at the point of use, so handlers are testable with stubs.
type Deps struct {
	CartSvc    CartService
	OrderSvc   OrderService
	ProductSvc ProductService
	AdminKey   string
}

type CartService interface {
	NewGuestSession() string
	Get(ctx context.Context, customerID string) (*domain.Cart, error)
	GetGuest(ctx context.Context, sessionKey string) (*domain.Cart, error)
	AddLine(ctx context.Context, customerID string, in cartsvc.AddLineInput) (*domain.Cart, error)
	AddGuestLine(ctx context.Context, sessionKey string, in cartsvc.AddLineInput) (*domain.Cart, error)
	SetQuantity(ctx context.Context, customerID, lineID string, quantity int) (*domain.Cart, error)
	SetGuestQuantity(ctx context.Context, sessionKey, lineID string, quantity int) (*domain.Cart, error)
	RemoveLine(ctx context.Context, customerID, lineID string) (*domain.Cart, error)
	RemoveGuestLine(ctx context.Context, sessionKey, lineID string) (*domain.Cart, error)
	ApplyCoupon(ctx context.Context, customerID, code string) (*domain.Cart, error)
	ApplyGuestCoupon(ctx context.Context, sessionKey, code string) (*domain.Cart, error)
	Clear(ctx context.Context, customerID string) (*domain.Cart, error)
	ClearGuest(ctx context.Context, sessionKey string) (*domain.Cart, error)
	AdoptGuestCart(ctx context.Context, customerID, sessionKey string) (*domain.Cart, error)
}

type OrderService interface {
	Checkout(ctx context.Context, customerID string, cart *domain.Cart, in ordersvc.CheckoutInput) (*ordersvc.CheckoutResult, error)
	Get(ctx context.Context, customerID, orderID string) (*domain.Order, error)
	GetByNumber(ctx context.Context, orderNumber string) (*domain.Order, error)
	ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error)
	Advance(ctx context.Context, orderID string, next domain.OrderStatus, trackingNumber, note string) (*domain.Order, error)
	Cancel(ctx context.Context, customerID, orderID, reason string) (*domain.Order, error)
	Rate(ctx context.Context, customerID, orderID string, rate int, comment string) (*domain.Order, error)
}

type ProductService interface {
	List(ctx context.Context) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, headerSessionKey, headerCustomerID, headerAdminKey)
	router.Use(cors.New(corsCfg))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	router.GET("/products", listProductsHandler(deps.ProductSvc))
	router.GET("/products/:productID", getProductHandler(deps.ProductSvc))
	router.GET("/orders/track/:orderNumber", trackOrderHandler(deps.OrderSvc))

	guest := router.Group("/guest")
	{
		guest.POST("/carts", newGuestSessionHandler(deps.CartSvc))
		withSession := guest.Group("", sessionMiddleware())
		withSession.GET("/cart", getGuestCartHandler(deps.CartSvc))
		withSession.POST("/cart/lines", addGuestLineHandler(deps.CartSvc))
		withSession.PATCH("/cart/lines/:lineID", setGuestQuantityHandler(deps.CartSvc))
		withSession.DELETE("/cart/lines/:lineID", removeGuestLineHandler(deps.CartSvc))
		withSession.POST("/cart/coupon", applyGuestCouponHandler(deps.CartSvc))
		withSession.DELETE("/cart", clearGuestCartHandler(deps.CartSvc))
	}

	me := router.Group("/me", customerMiddleware())
	{
		me.GET("/cart", getCartHandler(deps.CartSvc))
		me.POST("/cart/lines", addLineHandler(deps.CartSvc))
		me.PATCH("/cart/lines/:lineID", setQuantityHandler(deps.CartSvc))
		me.DELETE("/cart/lines/:lineID", removeLineHandler(deps.CartSvc))
		me.POST("/cart/coupon", applyCouponHandler(deps.CartSvc))
		me.DELETE("/cart", clearCartHandler(deps.CartSvc))
		me.POST("/cart/adopt", adoptGuestCartHandler(deps.CartSvc))

		me.POST("/orders", checkoutHandler(deps.CartSvc, deps.OrderSvc))
		me.GET("/orders", listOrdersHandler(deps.OrderSvc))
		me.GET("/orders/:orderID", getOrderHandler(deps.OrderSvc))
		me.POST("/orders/:orderID/cancel", cancelOrderHandler(deps.OrderSvc))
		me.POST("/orders/:orderID/rating", rateOrderHandler(deps.OrderSvc))
	}

	admin := router.Group("/admin", adminMiddleware(deps.AdminKey))
	{
		admin.POST("/orders/:orderID/status", advanceOrderHandler(deps.OrderSvc))
	}

	return router, nil
}
