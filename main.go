package main

import "github.com/nsyszr/flowpilot/cmd"

func main() {
	cmd.Execute()
}
