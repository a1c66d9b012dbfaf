// File: /utils/response.go
package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	Total      int64       `json:"total"`
	TotalPages int         `json:"total_pages"`
}

// SendMessage writes the standard {message, statusText} envelope, plus a
// true-valued entry for every non-empty flag.
func SendMessage(c *gin.Context, status int, message, statusText string, flags ...string) {
	body := gin.H{"message": message, "statusText": statusText}
	for _, f := range flags {
		if f != "" {
			body[f] = true
		}
	}
	c.JSON(status, body)
}

func SendRejection(c *gin.Context, r *Rejection) {
	SendMessage(c, r.Status, r.Message, r.StatusText, r.Flag)
}

// SendServerError hides the cause; callers log it.
func SendServerError(c *gin.Context, statusText string, flags ...string) {
	SendMessage(c, http.StatusInternalServerError, "Server Error", statusText, flags...)
}

func SendSuccess(c *gin.Context, status int, message, statusText string, flags ...string) {
	body := gin.H{"message": message, "statusText": statusText, "success": true}
	for _, f := range flags {
		if f != "" {
			body[f] = true
		}
	}
	c.JSON(status, body)
}

func SendPaginated(c *gin.Context, data interface{}, page, limit int, total int64) {
	totalPages := int((total + int64(limit) - 1) / int64(limit))

	c.JSON(http.StatusOK, PaginatedResponse{
		Data:       data,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	})
}
