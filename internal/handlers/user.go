// internal/handlers/user.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/ifm-backend/internal/services"
	"github.com/javajoker/ifm-backend/internal/utils"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// GET /me/deals
func (h *UserHandler) GetMyDeals(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}

	deals, err := h.userService.MyDeals(c.Request.Context(), caller)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, deals)
}
