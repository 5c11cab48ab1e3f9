package main

import "github.com/dhidargpt/dhidar/cmd/dhidar/cmd"

func main() {
	cmd.Execute()
}
