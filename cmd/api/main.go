package main

import (
	"os"

	"github.com/Overland-East-Bay/trip-booking-api/cmd/api/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
