package main

import "github.com/rustyeddy/tradegame/internal/cli"

func main() {
	cli.Execute()
}
