// internal/utils/response.go
package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/ifm-backend/internal/apperrors"
	"github.com/javajoker/ifm-backend/internal/i18n"
	"github.com/javajoker/ifm-backend/internal/models"
)

const (
	ContextKeyLang      = "lang"
	ContextKeyIdentity  = "identity"
	ContextKeyRequestID = "request_id"
)

type ErrorBody struct {
	OK     bool              `json:"ok"`
	Code   apperrors.Code    `json:"code"`
	Detail string            `json:"detail"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type OKBody struct {
	OK bool `json:"ok"`
}

// SuccessResponse writes data as-is with 200.
func SuccessResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

func CreatedResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

func OKResponse(c *gin.Context) {
	c.JSON(http.StatusOK, OKBody{OK: true})
}

func ErrorResponse(c *gin.Context, statusCode int, code apperrors.Code, detail string) {
	c.AbortWithStatusJSON(statusCode, ErrorBody{
		OK:     false,
		Code:   code,
		Detail: detail,
	})
}

func BadRequestResponse(c *gin.Context, detail string) {
	if detail == "" {
		detail = i18n.T(GetLangFromContext(c), i18n.KeyValidationInvalid)
	}
	ErrorResponse(c, http.StatusBadRequest, apperrors.CodeValidation, detail)
}

func UnauthorizedResponse(c *gin.Context, detail string) {
	if detail == "" {
		detail = i18n.T(GetLangFromContext(c), i18n.KeyAuthRequired)
	}
	ErrorResponse(c, http.StatusUnauthorized, apperrors.CodeUnauthenticated, detail)
}

func ForbiddenResponse(c *gin.Context, detail string) {
	if detail == "" {
		detail = i18n.T(GetLangFromContext(c), i18n.KeyAccessDenied)
	}
	ErrorResponse(c, http.StatusForbidden, apperrors.CodeForbidden, detail)
}

func NotFoundResponse(c *gin.Context, detail string) {
	if detail == "" {
		detail = i18n.T(GetLangFromContext(c), i18n.KeyNotFound)
	}
	ErrorResponse(c, http.StatusNotFound, apperrors.CodeNotFound, detail)
}

func InternalErrorResponse(c *gin.Context) {
	detail := i18n.T(GetLangFromContext(c), i18n.KeyInternalError)
	ErrorResponse(c, http.StatusInternalServerError, apperrors.CodeInternal, detail)
}

func ValidationErrorResponse(c *gin.Context, errors []ValidationError) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorBody{
		OK:     false,
		Code:   apperrors.CodeValidation,
		Detail: i18n.T(GetLangFromContext(c), i18n.KeyValidationInvalid),
		Errors: errors,
	})
}

// HandleServiceError maps a service error onto the response. Typed errors
// keep their code and message; anything else is logged and hidden behind 500.
func HandleServiceError(c *gin.Context, err error) {
	appErr := apperrors.As(err)
	if appErr == nil || appErr.Code() == apperrors.CodeInternal {
		logrus.WithError(err).WithFields(logrus.Fields{
			"path":       c.FullPath(),
			"request_id": c.GetString(ContextKeyRequestID),
		}).Error("Request failed")
		InternalErrorResponse(c)
		return
	}
	if appErr.Code() == apperrors.CodeValidation {
		if fieldErrors := GetValidationErrors(appErr); len(fieldErrors) > 0 {
			c.AbortWithStatusJSON(appErr.HTTPStatus(), ErrorBody{
				OK:     false,
				Code:   appErr.Code(),
				Detail: appErr.Message(),
				Errors: fieldErrors,
			})
			return
		}
	}
	ErrorResponse(c, appErr.HTTPStatus(), appErr.Code(), appErr.Message())
}

func PaginatedResponse(c *gin.Context, result PaginationResult) {
	SetPaginationHeaders(c, result)
	c.JSON(http.StatusOK, gin.H{
		"items": result.Data,
		"pagination": gin.H{
			"page":        result.Page,
			"limit":       result.Limit,
			"total":       result.Total,
			"total_pages": result.TotalPages,
		},
	})
}

func GetLangFromContext(c *gin.Context) string {
	if lang, exists := c.Get(ContextKeyLang); exists {
		if langStr, ok := lang.(string); ok {
			return langStr
		}
	}
	return i18n.DefaultLang()
}

func GetIdentityFromContext(c *gin.Context) (models.Identity, bool) {
	if v, exists := c.Get(ContextKeyIdentity); exists {
		if identity, ok := v.(models.Identity); ok {
			return identity, true
		}
	}
	return models.Identity{}, false
}
