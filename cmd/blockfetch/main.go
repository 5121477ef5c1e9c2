package main

import (
	"errors"
	"log"
	"os"

	"github.com/bitcoin-sv/blockfetch/cmd/blockfetch/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		// failures of fetch and verify are logged by the command itself
		if !errors.Is(err, app.ErrCommandFailed) {
			log.Printf("failed to run blockfetch: %v", err)
		}
		os.Exit(1)
	}

	os.Exit(0)
}
