package main

import "github.com/Hermela-code/minigit/cmd"

func main() {
	cmd.Execute()
}
