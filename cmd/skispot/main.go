package main

import "github.com/pfrederiksen/ski-spot/internal/cli"

func main() {
	cli.Execute()
}
