package main

import "github.com/mcoot/battleship-go2/internal/cli"

func main() {
	cli.Execute()
}
