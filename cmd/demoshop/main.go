package main

import "demo-shop/internal/cli"

func main() {
	cli.Execute()
}
