package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

func atoiParam(c *gin.Context, name string) (int, error) {
	return strconv.Atoi(c.Param(name))
}
