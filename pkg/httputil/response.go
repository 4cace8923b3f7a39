package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/aegis-triage/pkg/errors"
)

// Response wraps all API responses
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *Error      `json:"error,omitempty"`
}

// Error represents API error
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	TraceID string `json:"trace_id,omitempty"`
}

// Pagination represents pagination metadata
type Pagination struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Count    int `json:"count"`
}

// PaginatedResponse wraps paginated data
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Pagination Pagination  `json:"pagination"`
}

// RespondWithSuccess sends a success response
func RespondWithSuccess(c *gin.Context, data interface{}) {
	RespondWithStatus(c, http.StatusOK, data)
}

func RespondWithStatus(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{
		Success: true,
		Data:    data,
	})
}

// RespondWithError sends an error response. Errors that are not an
// *errors.AppError are reported as a generic 500 so internals never leak.
func RespondWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "Internal server error"

	if appErr, ok := errors.As(err); ok {
		status = appErr.StatusCode()
		message = appErr.Message
	}

	c.AbortWithStatusJSON(status, Response{
		Success: false,
		Error: &Error{
			Code:    status,
			Message: message,
			TraceID: c.GetString("request_id"),
		},
	})
}

// RespondWithPagination sends a paginated response. The backing stores do
// not count rows, so count is the size of this page.
func RespondWithPagination(c *gin.Context, data interface{}, page, pageSize, count int) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: PaginatedResponse{
			Data: data,
			Pagination: Pagination{
				Page:     page,
				PageSize: pageSize,
				Count:    count,
			},
		},
	})
}
