package main

import "github.com/mcoot/matchqueue/internal/cli"

func main() {
	cli.Execute()
}
