package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tarzi-api/internal/domain"
	cartsvc "tarzi-api/internal/service/cart"
)

type cartResponse struct {
	ID           string             `json:"id"`
	Lines        []cartLineResponse `json:"lines"`
	CouponCode   string             `json:"couponCode,omitempty"`
	Discount     float64            `json:"discount"`
	Subtotal     float64            `json:"subtotal"`
	ShippingCost float64            `json:"shippingCost"`
	TaxRate      float64            `json:"taxRate"`
	TaxAmount    float64            `json:"taxAmount"`
	TotalPrice   float64            `json:"totalPrice"`
}

type cartLineResponse struct {
	ID            string  `json:"id"`
	ProductID     string  `json:"productId"`
	ProductName   string  `json:"productName,omitempty"`
	FabricChoice  string  `json:"fabricChoice,omitempty"`
	ColorChoice   string  `json:"colorChoice,omitempty"`
	MeasurementID string  `json:"measurementId,omitempty"`
	Quantity      int     `json:"quantity"`
	UnitPrice     float64 `json:"unitPrice"`
	LineTotal     float64 `json:"lineTotal"`
}

func toCartResponse(cart *domain.Cart) cartResponse {
	lines := make([]cartLineResponse, 0, len(cart.Lines))
	for _, l := range cart.Lines {
		lines = append(lines, cartLineResponse{
			ID:            l.ID,
			ProductID:     l.ProductID,
			ProductName:   l.ProductName,
			FabricChoice:  l.FabricChoice,
			ColorChoice:   l.ColorChoice,
			MeasurementID: l.MeasurementID,
			Quantity:      l.Quantity,
			UnitPrice:     l.UnitPrice.InexactFloat64(),
			LineTotal:     l.UnitPrice.Mul(decimalFromInt(l.Quantity)).Round(2).InexactFloat64(),
		})
	}
	return cartResponse{
		ID:           cart.ID,
		Lines:        lines,
		CouponCode:   cart.CouponCode,
		Discount:     cart.Discount.InexactFloat64(),
		Subtotal:     cart.Subtotal.InexactFloat64(),
		ShippingCost: cart.ShippingCost.InexactFloat64(),
		TaxRate:      cart.TaxRate.InexactFloat64(),
		TaxAmount:    cart.TaxAmount.InexactFloat64(),
		TotalPrice:   cart.TotalPrice.InexactFloat64(),
	}
}

type setQuantityRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

type couponRequest struct {
	Code string `json:"code" binding:"required"`
}

type adoptRequest struct {
	SessionKey string `json:"sessionKey" binding:"required"`
}

func newGuestSessionHandler(svc CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"sessionKey": svc.NewGuestSession()})
	}
}

func getCartHandler(svc CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cart, err := svc.Get(c.Request.Context(), customerID(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, toCartResponse(cart))
	}
}

func getGuestCartHandler(svc CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cart, err := svc.GetGuest(c.Request.Context(), sessionKey(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, toCartResponse(cart))
	}
}

func addLineHandler(svc CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in cartsvc.AddLineInput
		if err := c.ShouldBindJSON(&in); err != nil {
			writeBadRequest(c, "invalid request body")
			return
		}
		cart, err := svc.AddLine(c.Request.Context(), customerID(c), in)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, toCartResponse(cart))
	}
}

func addGuestLineHandler(svc CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in cartsvc.AddLineInput
		if err := c.ShouldBindJSON(&in); err != nil {
			writeBadRequest(c, "invalid request body")
			return
		}
		cart, err := svc.AddGuestLine(c.Request.Context(), sessionKey(c), in)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, toCartResponse(cart))
	}
}

func setQuantityHandler(svc CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in setQuantityRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			writeBadRequest(c, "invalid request body")
			return
		}
		cart, err := svc.SetQuantity(c.Request.Context(), customerID(c), c.Param("lineID"), in.Quantity)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, toCartResponse(cart))
	}
}

func setGuestQuantityHandler(svc CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in setQuantityRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			writeBadRequest(c, "invalid request body")
			return
		}
		cart, err := svc.SetGuestQuantity(c.Request.Context(), sessionKey(c), c.Param("lineID"), in.Quantity)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, toCartResponse(cart))
	}
}

func removeLineHandler(svc CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cart, err := svc.RemoveLine(c.Request.Context(), customerID(c), c.Param("lineID"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, toCartResponse(cart))
	}
}

func removeGuestLineHandler(svc CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cart, err := svc.RemoveGuestLine(c.Request.Context(), sessionKey(c), c.Param("lineID"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, toCartResponse(cart))
	}
}

func applyCouponHandler(svc CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in couponRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			writeBadRequest(c, "coupon code required")
			return
		}
		cart, err := svc.ApplyCoupon(c.Request.Context(), customerID(c), in.Code)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, toCartResponse(cart))
	}
}

func applyGuestCouponHandler(svc CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in couponRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			writeBadRequest(c, "coupon code required")
			return
		}
		cart, err := svc.ApplyGuestCoupon(c.Request.Context(), sessionKey(c), in.Code)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, toCartResponse(cart))
	}
}

func clearCartHandler(svc CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cart, err := svc.Clear(c.Request.Context(), customerID(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, toCartResponse(cart))
	}
}

func clearGuestCartHandler(svc CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cart, err := svc.ClearGuest(c.Request.Context(), sessionKey(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, toCartResponse(cart))
	}
}

func adoptGuestCartHandler(svc CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in adoptRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			writeBadRequest(c, "sessionKey required")
			return
		}
		cart, err := svc.AdoptGuestCart(c.Request.Context(), customerID(c), in.SessionKey)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, toCartResponse(cart))
	}
}
