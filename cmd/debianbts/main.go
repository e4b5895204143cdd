package main

import "debianbts/internal/cli"

func main() {
	cli.Execute()
}
