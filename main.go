package main

import "github.com/meysamhadeli/traitgen/cmd"

func main() {
	cmd.Execute()
}
