package main

import "shopledger/cmd"

func main() {
	cmd.Execute()
}
