package handlers

import (
	"net/http"
	"strconv"

	"pharmaledger_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// DefaultTerminalID is used when a request carries no X-Terminal-ID header,
// which covers the common single-counter deployment.
const DefaultTerminalID = "terminal-1"

func terminalID(c *gin.Context) string {
	if id := c.GetHeader("X-Terminal-ID"); id != "" {
		return id
	}
	return DefaultTerminalID
}

// parseIDParam parses a path parameter as an int64 ID. On failure it writes
// the error response and returns false.
func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid "+name+" format.", err.Error()))
		return 0, false
	}
	return id, true
}

func parsePagination(c *gin.Context) (page, pageSize int, ok bool) {
	page, pageSize = 1, 20
	if pageStr := c.Query("page"); pageStr != "" {
		p, err := strconv.Atoi(pageStr)
		if err != nil || p <= 0 {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid page format.", "page must be a positive integer"))
			return 0, 0, false
		}
		page = p
	}
	if pageSizeStr := c.Query("page_size"); pageSizeStr != "" {
		ps, err := strconv.Atoi(pageSizeStr)
		if err != nil || ps <= 0 {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid page_size format.", "page_size must be a positive integer"))
			return 0, 0, false
		}
		pageSize = ps
	}
	return page, pageSize, true
}

func respondPage(c *gin.Context, data interface{}, total, page, pageSize int) {
	c.JSON(http.StatusOK, gin.H{
		"data":      data,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}
