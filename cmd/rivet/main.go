package main

import (
	"github.com/rivetship/rivet/pkg/cli/cmd"
)

func main() {
	cmd.Execute()
}
