package main

import "github.com/brogergvhs/jmana/cmd"

func main() {
	cmd.Execute()
}
