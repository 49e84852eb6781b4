package main

import "github.com/viagens-moz/intercity/cmd/routectl/command"

func main() {
	command.Execute()
}
