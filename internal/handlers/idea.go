// internal/handlers/idea.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/ifm-backend/internal/services"
	"github.com/javajoker/ifm-backend/internal/utils"
)

type IdeaHandler struct {
	ideaService    *services.IdeaService
	catalogService *services.CatalogService
}

func NewIdeaHandler(ideaService *services.IdeaService, catalogService *services.CatalogService) *IdeaHandler {
	return &IdeaHandler{
		ideaService:    ideaService,
		catalogService: catalogService,
	}
}

// GET /ideas/recommended?include_owned=true
func (h *IdeaHandler) GetRecommended(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}

	includeOwned, _ := strconv.ParseBool(c.DefaultQuery("include_owned", "false"))

	ideas, err := h.catalogService.GetRecommended(c.Request.Context(), caller, includeOwned)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, ideas)
}

// GET /ideas/:id
func (h *IdeaHandler) GetIdea(c *gin.Context) {
	ideaID, ok := paramID(c, "id")
	if !ok {
		return
	}

	idea, err := h.ideaService.GetIdea(c.Request.Context(), ideaID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, idea)
}

// POST /ideas
func (h *IdeaHandler) CreateIdea(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}

	var req services.CreateIdeaRequest
	if !bindJSON(c, &req) {
		return
	}

	idea, err := h.ideaService.CreateIdea(c.Request.Context(), caller, &req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, idea)
}

// GET /ideas/mine
func (h *IdeaHandler) GetMyIdeas(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}

	ideas, err := h.ideaService.ListSellerIdeas(c.Request.Context(), caller)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, ideas)
}

// PUT /ideas/:id/status
func (h *IdeaHandler) UpdateStatus(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}
	ideaID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req services.UpdateIdeaStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	idea, err := h.ideaService.UpdateIdeaStatus(c.Request.Context(), caller, ideaID, &req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, idea)
}

// PUT /ideas/:id/pricing
func (h *IdeaHandler) UpdatePricing(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}
	ideaID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req services.UpdateIdeaPricingRequest
	if !bindJSON(c, &req) {
		return
	}

	idea, err := h.ideaService.UpdateIdeaPricing(c.Request.Context(), caller, ideaID, &req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, idea)
}
