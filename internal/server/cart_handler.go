package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/hivestore/internal/service"
	"github.com/yourusername/hivestore/pkg/cart"
)

type cartHandler struct {
	service *service.ProductService
}

type cartResponse struct {
	Items  []cart.Item `json:"items"`
	IsOpen bool        `json:"isOpen"`
	Totals cart.Totals `json:"totals"`
}

func newCartResponse(store *cart.Store) cartResponse {
	state := store.Snapshot()
	if state.Items == nil {
		state.Items = []cart.Item{}
	}
	return cartResponse{
		Items:  state.Items,
		IsOpen: state.IsOpen,
		Totals: cart.ComputeTotals(state.Items),
	}
}

// addItemRequest adds one unit when Quantity is omitted.
type addItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  *int   `json:"quantity"`
}

// updateQuantityRequest sets an exact quantity; zero or less removes the item.
type updateQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

func (h *cartHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, newCartResponse(currentSession(c).Cart))
}

func (h *cartHandler) AddItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	product, err := h.service.GetProductByID(c.Request.Context(), req.ProductID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	store := currentSession(c).Cart
	if err := store.AddItem(c.Request.Context(), product, quantity); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCartResponse(store))
}

func (h *cartHandler) UpdateQuantity(c *gin.Context) {
	var req updateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	h.mutate(c, func(store *cart.Store, ctx context.Context) error {
		return store.UpdateQuantity(ctx, c.Param("id"), *req.Quantity)
	})
}

func (h *cartHandler) RemoveItem(c *gin.Context) {
	h.mutate(c, func(store *cart.Store, ctx context.Context) error {
		return store.RemoveItem(ctx, c.Param("id"))
	})
}

func (h *cartHandler) Clear(c *gin.Context) {
	h.mutate(c, (*cart.Store).Clear)
}

func (h *cartHandler) Open(c *gin.Context) {
	h.mutate(c, (*cart.Store).Open)
}

func (h *cartHandler) Close(c *gin.Context) {
	h.mutate(c, (*cart.Store).Close)
}

func (h *cartHandler) Toggle(c *gin.Context) {
	h.mutate(c, (*cart.Store).Toggle)
}

func (h *cartHandler) mutate(c *gin.Context, op func(*cart.Store, context.Context) error) {
	store := currentSession(c).Cart
	if err := op(store, c.Request.Context()); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCartResponse(store))
}
