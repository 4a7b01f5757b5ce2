package main

import (
	"os"

	"github.com/ENuel20/SoNa/internal/app"
)

func main() {
	runner := app.NewRunner()
	os.Exit(runner.Run(os.Args[1:]))
}
