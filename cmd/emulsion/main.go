package main

import (
	"github.com/FSXAC/Emulsion/lib/cli"
)

func main() {
	cli.Main()
}
