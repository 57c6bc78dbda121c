package main

import (
	"log"

	"artbid-api/app"
	"artbid-api/internal/config"
)

func main() {
	cfg := config.MustLoad()

	if err := app.Run(cfg); err != nil {
		log.Fatal(err)
	}
}
