package main

import (
	"log"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/avaldez21/clinica-backend/config"
	"github.com/avaldez21/clinica-backend/internal/routes"
	"github.com/avaldez21/clinica-backend/pkg/storage/mariadb"
	"github.com/avaldez21/clinica-backend/ws"
)

func main() {
	cfg := config.LoadConfig()
	db := mariadb.Connect()

	hub := ws.NewHub()
	go hub.Run()

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	routes.Init(e, db, hub)

	log.Printf("Server running on port %s...", cfg.Port)
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
