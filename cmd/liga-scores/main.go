package main

import (
	"github.com/pfrederiksen/liga-scores/internal/cli"
)

func main() {
	cli.Execute()
}
