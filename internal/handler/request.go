package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// intQuery parses an integer query parameter, returning 0 when absent or
// malformed; the services clamp or reject downstream.
func intQuery(c *gin.Context, name string) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return 0
	}
	return v
}
