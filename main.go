package main

import "github.com/Rorical/katabasis/cmd"

func main() {
	cmd.Execute()
}
