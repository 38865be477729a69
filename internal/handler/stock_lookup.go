package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/Aidanden/SIMS-sub007/internal/apierror"
	"github.com/Aidanden/SIMS-sub007/internal/dto"
	"github.com/Aidanden/SIMS-sub007/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const stockCacheTTL = 30 * time.Second

// StockLookupHandler serves the read-only stock/price lookup by SKU.
// Answers come from a short-lived Redis cache when possible; the TTL is kept
// small because approvals and returns mutate quantities out of band.
type StockLookupHandler struct {
	productRepo repository.ProductRepository
	stockRepo   repository.StockRepository
	rdb         *redis.Client
}

func NewStockLookupHandler(
	productRepo repository.ProductRepository,
	stockRepo repository.StockRepository,
	rdb *redis.Client,
) *StockLookupHandler {
	return &StockLookupHandler{productRepo: productRepo, stockRepo: stockRepo, rdb: rdb}
}

func (h *StockLookupHandler) GetBySKU(c *gin.Context) {
	sku := c.Param("sku")
	companyID, err := uuid.Parse(c.Query("company_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("company_id query parameter is required"))
		return
	}
	ctx := c.Request.Context()
	cacheKey := "stock:" + companyID.String() + ":" + sku

	if h.rdb != nil {
		if cached, err := h.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
			var resp dto.StockLookupResponse
			if jsonErr := json.Unmarshal(cached, &resp); jsonErr == nil {
				c.JSON(http.StatusOK, resp)
				return
			}
		}
	}

	product, err := h.productRepo.FindBySKU(ctx, sku)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New("product not found"))
		return
	}
	resp := dto.StockLookupResponse{
		SKU:       product.SKU,
		Name:      product.Name,
		CompanyID: companyID.String(),
		Quantity:  decimal.Zero,
		Price:     decimal.Zero,
	}
	if stock, err := h.stockRepo.Find(ctx, product.ID, companyID); err == nil {
		resp.Quantity = stock.Quantity
		resp.Price = stock.Price
	}

	// Populate cache — best effort, ignore errors
	if h.rdb != nil {
		if b, jsonErr := json.Marshal(resp); jsonErr == nil {
			_ = h.rdb.Set(context.Background(), cacheKey, b, stockCacheTTL).Err()
		}
	}

	c.JSON(http.StatusOK, resp)
}

// Movements lists the audit ledger of stock mutations for a product.
func (h *StockLookupHandler) Movements(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid product id"))
		return
	}
	companyID, err := uuid.Parse(c.Query("company_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("company_id query parameter is required"))
		return
	}
	movements, err := h.stockRepo.ListMovements(c.Request.Context(), productID, companyID)
	if err != nil {
		respondError(c, err)
		return
	}
	items := make([]dto.StockMovementResponse, 0, len(movements))
	for _, m := range movements {
		item := dto.StockMovementResponse{
			ID:             m.ID.String(),
			ProductID:      m.ProductID.String(),
			CompanyID:      m.CompanyID.String(),
			Type:           m.Type,
			Quantity:       m.Quantity,
			QuantityBefore: m.QuantityBefore,
			QuantityAfter:  m.QuantityAfter,
			Reason:         m.Reason,
			CreatedAt:      m.CreatedAt.Format(time.RFC3339),
		}
		if m.ReferenceID != nil {
			ref := m.ReferenceID.String()
			item.ReferenceID = &ref
		}
		items = append(items, item)
	}
	c.JSON(http.StatusOK, items)
}
