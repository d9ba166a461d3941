package main

import (
	"os"

	lenshubcmder "github.com/lenshub/lenshub/cmd/lenshub"
)

func main() {
	cmd := lenshubcmder.NewLensHubCmd()

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
