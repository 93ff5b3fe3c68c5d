package main

import "cobolscan/internal/cli"

func main() {
	cli.Execute()
}
