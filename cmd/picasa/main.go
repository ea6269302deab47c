package main

import (
	"log"
	"os"

	"github.com/Camalot9/picasaweb-go/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		log.Fatalf("picasa failed to start: %v", err)
	}
	if err := a.Run(os.Args[1:]); err != nil {
		log.Fatalf("picasa: %v", err)
	}
}
