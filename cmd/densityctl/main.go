package main

import "github.com/materials-commons/partdensity/cmd/densityctl/cmd"

func main() {
	cmd.Execute()
}
