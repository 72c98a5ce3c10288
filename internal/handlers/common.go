// internal/handlers/common.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/ifm-backend/internal/i18n"
	"github.com/javajoker/ifm-backend/internal/models"
	"github.com/javajoker/ifm-backend/internal/utils"
)

// bindJSON decodes the body, answering 400 itself on failure.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		utils.BadRequestResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyValidationBody))
		return false
	}
	return true
}

func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		utils.BadRequestResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyValidationID))
		return 0, false
	}
	return uint(id), true
}

// identity returns the caller set by AuthRequired.
func identity(c *gin.Context) (models.Identity, bool) {
	id, ok := utils.GetIdentityFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
	}
	return id, ok
}
