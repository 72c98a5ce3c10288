// internal/handlers/admin.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/ifm-backend/internal/services"
	"github.com/javajoker/ifm-backend/internal/utils"
)

type AdminHandler struct {
	adminService  *services.AdminService
	resaleService *services.ResaleService
}

func NewAdminHandler(adminService *services.AdminService, resaleService *services.ResaleService) *AdminHandler {
	return &AdminHandler{
		adminService:  adminService,
		resaleService: resaleService,
	}
}

// GET /admin/health
func (h *AdminHandler) Health(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}

	if err := h.adminService.Health(c.Request.Context(), caller); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.OKResponse(c)
}

// GET /admin/stats
func (h *AdminHandler) GetDashboardStats(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}

	stats, err := h.adminService.GetDashboardStats(c.Request.Context(), caller)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, stats)
}

// GET /admin/audit-logs
func (h *AdminHandler) GetAuditLogs(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}
	params := utils.GetPaginationParams(c)

	logs, total, err := h.adminService.GetAuditLogs(c.Request.Context(), caller, params)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(logs, total, utils.NormalizePagination(params)))
}

// PUT /admin/users/:id/status
func (h *AdminHandler) UpdateUserStatus(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}
	userID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req services.UpdateUserStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.adminService.UpdateUserStatus(c.Request.Context(), caller, userID, &req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, user)
}

// POST /admin/resale/prune
func (h *AdminHandler) PruneListings(c *gin.Context) {
	if _, ok := identity(c); !ok {
		return
	}

	removed, err := h.resaleService.PruneOrphanListings(c.Request.Context())
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"ok": true, "removed": removed})
}
