package main

import "themehint/internal/cli"

func main() {
	cli.Execute()
}
