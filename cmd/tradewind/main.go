package main

import "github.com/tradewind-labs/tradewind/internal/cmd"

func main() {
	cmd.Execute()
}
