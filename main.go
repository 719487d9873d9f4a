package main

import (
	"log"

	"github.com/glbter/stock-portfolio/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatalln(err)
	}
}
