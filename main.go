package main

import (
	"github.com/jlesster/status-bar/internal/cli"
)

func main() {
	cli.Execute()
}
