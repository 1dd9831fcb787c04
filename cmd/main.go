package main

import (
	"github.com/HeChing/Capacitapp/internal/app"
	"github.com/HeChing/Capacitapp/internal/config"
	"github.com/gin-gonic/gin"
)

func main() {
	gin.SetMode(gin.ReleaseMode)
	cfg := config.MustLoad()
	app.Run(cfg)
}
