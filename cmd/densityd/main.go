package main

import "github.com/materials-commons/partdensity/cmd/densityd/cmd"

func main() {
	cmd.Execute()
}
