// internal/utils/response.go
package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unique-collection/catalog/internal/i18n"
)

type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ListResponse is the envelope of a paginated catalog listing.
type ListResponse struct {
	Success bool        `json:"success"`
	Count   int         `json:"count"`
	Total   int64       `json:"total"`
	Page    int         `json:"page"`
	Pages   int         `json:"pages"`
	Data    interface{} `json:"data"`
}

var exposeErrorDetail bool

// SetErrorDetail controls whether server error responses carry the
// underlying error text.
func SetErrorDetail(enabled bool) {
	exposeErrorDetail = enabled
}

func SuccessResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
	})
}

// DeletedResponse answers a successful delete with an empty data object.
func DeletedResponse(c *gin.Context) {
	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Data:    gin.H{},
	})
}

func PaginatedResponse(c *gin.Context, result PaginationResult, count int) {
	SetPaginationHeaders(c, result)
	c.JSON(http.StatusOK, ListResponse{
		Success: true,
		Count:   count,
		Total:   result.Total,
		Page:    result.Page,
		Pages:   result.TotalPages,
		Data:    result.Data,
	})
}

func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, APIResponse{
		Success: false,
		Message: message,
	})
}

func BadRequestResponse(c *gin.Context, message string) {
	if message == "" {
		message = i18n.T(GetLangFromContext(c), i18n.KeyFileInvalidUpload)
	}
	ErrorResponse(c, http.StatusBadRequest, message)
}

func UnauthorizedResponse(c *gin.Context, message string) {
	if message == "" {
		message = i18n.T(GetLangFromContext(c), i18n.KeyAuthRequired)
	}
	ErrorResponse(c, http.StatusUnauthorized, message)
}

func NotFoundResponse(c *gin.Context, key string) {
	ErrorResponse(c, http.StatusNotFound, i18n.T(GetLangFromContext(c), key))
}

// InternalErrorResponse reports a server failure. The error text is only
// included when error detail is enabled.
func InternalErrorResponse(c *gin.Context, err error) {
	resp := APIResponse{
		Success: false,
		Message: i18n.T(GetLangFromContext(c), i18n.KeyServerError),
	}
	if exposeErrorDetail && err != nil {
		resp.Error = err.Error()
	}
	c.JSON(http.StatusInternalServerError, resp)
}

func GetLangFromContext(c *gin.Context) string {
	if lang, exists := c.Get("lang"); exists {
		if langStr, ok := lang.(string); ok {
			return langStr
		}
	}
	return "en"
}

func GetAdminSubjectFromContext(c *gin.Context) (string, bool) {
	if subject, exists := c.Get("admin_subject"); exists {
		if s, ok := subject.(string); ok {
			return s, true
		}
	}
	return "", false
}
