package main

import (
	"log"

	"github.com/phanxgames/ripple/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
