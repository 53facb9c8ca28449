package main

import (
	"log"

	"github.com/airoh-project/airoh/cmd/airoh/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
