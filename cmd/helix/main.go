package main

import "github.com/helix-dev/helix/internal/cli"

func main() {
	cli.Execute()
}
