package main

import "memorybank/cmd/memorybank-cli/cmd"

func main() {
	cmd.Execute()
}
