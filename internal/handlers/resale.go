// internal/handlers/resale.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/ifm-backend/internal/services"
	"github.com/javajoker/ifm-backend/internal/utils"
)

type ResaleHandler struct {
	resaleService *services.ResaleService
}

func NewResaleHandler(resaleService *services.ResaleService) *ResaleHandler {
	return &ResaleHandler{resaleService: resaleService}
}

// POST /resale/list
func (h *ResaleHandler) ListForResale(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}

	var req services.ListResaleRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.resaleService.ListExclusiveForResale(c.Request.Context(), caller, &req); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.OKResponse(c)
}

// DELETE /resale/list/:idea_id
func (h *ResaleHandler) WithdrawListing(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}
	ideaID, ok := paramID(c, "idea_id")
	if !ok {
		return
	}

	if err := h.resaleService.WithdrawListing(c.Request.Context(), caller, ideaID); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.OKResponse(c)
}

// GET /resale/market
func (h *ResaleHandler) GetMarket(c *gin.Context) {
	listings, err := h.resaleService.GetMarket(c.Request.Context())
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, listings)
}

// POST /resale/buy
func (h *ResaleHandler) Buy(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}

	var req services.BuyResaleRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.resaleService.BuyListedExclusive(c.Request.Context(), caller, &req); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.OKResponse(c)
}
