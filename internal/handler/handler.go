package handler

import (
	"strconv"

	"clinicpanel/internal/apperror"
	"clinicpanel/pkg/response"

	"github.com/gin-gonic/gin"
)

// fail renders a service error with the status its classification maps to.
func fail(c *gin.Context, err error) {
	status := apperror.HTTPStatus(err)
	c.JSON(status, response.Error(status, err.Error()))
}

func queryInt(c *gin.Context, name string) int {
	n, _ := strconv.Atoi(c.Query(name))
	return n
}
