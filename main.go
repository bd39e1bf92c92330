package main

import "github.com/notargets/gocfd2d/cmd"

func main() {
	cmd.Execute()
}
