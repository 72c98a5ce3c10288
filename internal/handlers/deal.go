// internal/handlers/deal.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/ifm-backend/internal/services"
	"github.com/javajoker/ifm-backend/internal/utils"
)

type DealHandler struct {
	dealService *services.DealService
}

func NewDealHandler(dealService *services.DealService) *DealHandler {
	return &DealHandler{dealService: dealService}
}

// POST /deals
func (h *DealHandler) CreateDeal(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}

	var req services.CreateDealRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.dealService.CreateOrUpdateDeal(c.Request.Context(), caller, &req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, result)
}
