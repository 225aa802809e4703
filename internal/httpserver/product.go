package httpserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tarzi-api/internal/domain"
)

type productResponse struct {
	ID            string    `json:"id"`
	SKU           string    `json:"sku"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	BasePrice     float64   `json:"basePrice"`
	FabricOptions []string  `json:"fabricOptions"`
	ColorOptions  []string  `json:"colorOptions"`
	Active        bool      `json:"active"`
	Rating        float64   `json:"rating"`
	NumReviews    int       `json:"numReviews"`
	CreatedAt     time.Time `json:"createdAt"`
}

func toProductResponse(p *domain.Product) productResponse {
	return productResponse{
		ID:            p.ID,
		SKU:           p.SKU,
		Name:          p.Name,
		Description:   p.Description,
		BasePrice:     p.BasePrice.InexactFloat64(),
		FabricOptions: p.FabricOptions,
		ColorOptions:  p.ColorOptions,
		Active:        p.Active,
		Rating:        p.Rating.InexactFloat64(),
		NumReviews:    p.NumReviews,
		CreatedAt:     p.CreatedAt,
	}
}

func listProductsHandler(svc ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		products, err := svc.List(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		out := make([]productResponse, 0, len(products))
		for i := range products {
			out = append(out, toProductResponse(&products[i]))
		}
		c.JSON(http.StatusOK, gin.H{"products": out})
	}
}

func getProductHandler(svc ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := svc.GetByID(c.Request.Context(), c.Param("productID"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, toProductResponse(p))
	}
}
