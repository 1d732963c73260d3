package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/hivestore/internal/service"
)

type searchHandler struct {
	service *service.ProductService
}

type searchRequest struct {
	Q    string `form:"q"`
	Save bool   `form:"save"`
}

type saveHistoryRequest struct {
	Query string `json:"query" binding:"required"`
}

func (h *searchHandler) Search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}

	results, err := h.service.Search(c.Request.Context(), req.Q)
	if err != nil {
		abortWithError(c, err)
		return
	}

	if req.Save {
		if err := currentSession(c).History.Save(c.Request.Context(), req.Q); err != nil {
			abortWithError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"query": req.Q, "results": results, "count": len(results)})
}

func (h *searchHandler) History(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"history": currentSession(c).History.Entries()})
}

func (h *searchHandler) SaveHistory(c *gin.Context) {
	var req saveHistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	history := currentSession(c).History
	if err := history.Save(c.Request.Context(), req.Query); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": history.Entries()})
}

func (h *searchHandler) ClearHistory(c *gin.Context) {
	history := currentSession(c).History
	if err := history.Clear(c.Request.Context()); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": history.Entries()})
}
