package main

import "github.com/icco/scopesynth/cmd"

func main() {
	cmd.Execute()
}
