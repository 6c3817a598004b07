package main

import (
	"albumsync/cmd"
	"albumsync/cmd/util"
)

func main() {
	defer util.HandlePanic()
	cmd.Execute()
}
