package main

import "pattern-catalog/cmd"

func main() {
	cmd.Execute()
}
