package main

import (
	_ "embed"

	"github.com/dontknow492/Notes/cmd"
)

//go:embed config/config.yaml
var c string

func main() {
	cmd.Execute(c)
}
