package main

import "github.com/pfrederiksen/award-shares/internal/cli"

func main() {
	cli.Execute()
}
