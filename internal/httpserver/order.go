package httpserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tarzi-api/internal/domain"
	ordersvc "tarzi-api/internal/service/order"
)

type orderResponse struct {
	ID              string              `json:"id"`
	OrderNumber     string              `json:"orderNumber"`
	Lines           []orderLineResponse `json:"lines"`
	ShippingAddress domain.Address      `json:"shippingAddress"`
	PaymentMethod   string              `json:"paymentMethod"`
	Subtotal        float64             `json:"subtotal"`
	ShippingCost    float64             `json:"shippingCost"`
	TaxAmount       float64             `json:"taxAmount"`
	Discount        float64             `json:"discount"`
	TotalPrice      float64             `json:"totalPrice"`
	Status          string              `json:"status"`
	Notes           string              `json:"notes,omitempty"`
	TrackingNumber  string              `json:"trackingNumber,omitempty"`
	Rating          *ratingResponse     `json:"rating,omitempty"`
	Timeline        []timelineResponse  `json:"timeline"`
	CreatedAt       time.Time           `json:"createdAt"`
}

type orderLineResponse struct {
	ID            string  `json:"id"`
	ProductID     string  `json:"productId"`
	ProductName   string  `json:"productName,omitempty"`
	FabricChoice  string  `json:"fabricChoice,omitempty"`
	ColorChoice   string  `json:"colorChoice,omitempty"`
	MeasurementID string  `json:"measurementId"`
	Quantity      int     `json:"quantity"`
	UnitPrice     float64 `json:"unitPrice"`
}

type ratingResponse struct {
	Rate    int       `json:"rate"`
	Comment string    `json:"comment,omitempty"`
	Date    time.Time `json:"date"`
}

type timelineResponse struct {
	Status string    `json:"status"`
	Note   string    `json:"note,omitempty"`
	Date   time.Time `json:"date"`
}

func toOrderResponse(o *domain.Order) orderResponse {
	lines := make([]orderLineResponse, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, orderLineResponse{
			ID:            l.ID,
			ProductID:     l.ProductID,
			ProductName:   l.ProductName,
			FabricChoice:  l.FabricChoice,
			ColorChoice:   l.ColorChoice,
			MeasurementID: l.MeasurementID,
			Quantity:      l.Quantity,
			UnitPrice:     l.UnitPrice.InexactFloat64(),
		})
	}
	timeline := make([]timelineResponse, 0, len(o.Timeline))
	for _, entry := range o.Timeline {
		timeline = append(timeline, timelineResponse(entry))
	}
	out := orderResponse{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		Lines:           lines,
		ShippingAddress: o.ShippingAddress,
		PaymentMethod:   o.PaymentMethod,
		Subtotal:        o.Subtotal.InexactFloat64(),
		ShippingCost:    o.ShippingCost.InexactFloat64(),
		TaxAmount:       o.TaxAmount.InexactFloat64(),
		Discount:        o.Discount.InexactFloat64(),
		TotalPrice:      o.TotalPrice.InexactFloat64(),
		Status:          string(o.Status),
		Notes:           o.Notes,
		TrackingNumber:  o.TrackingNumber,
		Timeline:        timeline,
		CreatedAt:       o.CreatedAt,
	}
	if o.Rating != nil {
		out.Rating = &ratingResponse{Rate: o.Rating.Rate, Comment: o.Rating.Comment, Date: o.Rating.Date}
	}
	return out
}

type checkoutRequest struct {
	ShippingAddress domain.Address `json:"shippingAddress" binding:"required"`
	PaymentMethod   string         `json:"paymentMethod" binding:"required"`
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

type rateRequest struct {
	Rate    int    `json:"rate"`
	Comment string `json:"comment"`
}

type advanceRequest struct {
	Status         string `json:"status" binding:"required"`
	TrackingNumber string `json:"trackingNumber"`
	Note           string `json:"note"`
}

func checkoutHandler(carts CartService, orders OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in checkoutRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			writeBadRequest(c, "invalid request body")
			return
		}
		ctx := c.Request.Context()
		cust := customerID(c)

		cart, err := carts.Get(ctx, cust)
		if err != nil {
			writeError(c, err)
			return
		}
		res, err := orders.Checkout(ctx, cust, cart, ordersvc.CheckoutInput{
			ShippingAddress: in.ShippingAddress,
			PaymentMethod:   in.PaymentMethod,
		})
		if err != nil {
			writeError(c, err)
			return
		}
		// the cart served its purpose; a fresh one starts empty
		if _, err := carts.Clear(ctx, cust); err != nil {
			writeError(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"order":            toOrderResponse(res.Order),
			"paymentSessionId": res.PaymentSessionID,
		})
	}
}

func listOrdersHandler(svc OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		orders, err := svc.ListByCustomer(c.Request.Context(), customerID(c))
		if err != nil {
			writeError(c, err)
			return
		}
		out := make([]orderResponse, 0, len(orders))
		for i := range orders {
			out = append(out, toOrderResponse(&orders[i]))
		}
		c.JSON(http.StatusOK, gin.H{"orders": out})
	}
}

func getOrderHandler(svc OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, err := svc.Get(c.Request.Context(), customerID(c), c.Param("orderID"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, toOrderResponse(o))
	}
}

func trackOrderHandler(svc OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, err := svc.GetByNumber(c.Request.Context(), c.Param("orderNumber"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, toOrderResponse(o))
	}
}

func cancelOrderHandler(svc OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in cancelRequest
		if err := c.ShouldBindJSON(&in); err != nil && err.Error() != "EOF" {
			writeBadRequest(c, "invalid request body")
			return
		}
		o, err := svc.Cancel(c.Request.Context(), customerID(c), c.Param("orderID"), in.Reason)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, toOrderResponse(o))
	}
}

func rateOrderHandler(svc OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in rateRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			writeBadRequest(c, "invalid request body")
			return
		}
		o, err := svc.Rate(c.Request.Context(), customerID(c), c.Param("orderID"), in.Rate, in.Comment)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, toOrderResponse(o))
	}
}

func advanceOrderHandler(svc OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in advanceRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			writeBadRequest(c, "invalid request body")
			return
		}
		o, err := svc.Advance(c.Request.Context(), c.Param("orderID"), domain.OrderStatus(in.Status), in.TrackingNumber, in.Note)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, toOrderResponse(o))
	}
}
