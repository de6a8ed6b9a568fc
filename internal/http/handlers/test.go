package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/yungbote/examgenius-backend/internal/http/response"
	"github.com/yungbote/examgenius-backend/internal/services"
)

type TestHandler struct {
	catalog services.CatalogService
}

func NewTestHandler(catalog services.CatalogService) *TestHandler {
	return &TestHandler{catalog: catalog}
}

// GET /api/tests
func (th *TestHandler) ListTests(c *gin.Context) {
	tests, err := th.catalog.ListActiveTests(c.Request.Context())
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"tests": tests})
}

// GET /api/tests/:id
func (th *TestHandler) GetTest(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.RespondError(c, err)
		return
	}
	test, err := th.catalog.GetTest(c.Request.Context(), id)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"test": test})
}

// GET /api/tests/:id/stats
func (th *TestHandler) GetTestStats(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.RespondError(c, err)
		return
	}
	stats, err := th.catalog.TestStats(c.Request.Context(), id)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"stats": stats})
}
