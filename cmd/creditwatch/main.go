package main

import "github.com/ppiankov/creditwatch/internal/cli"

func main() {
	cli.Execute()
}
