package main

import "MenuScout/cmd"

func main() {
	cmd.Execute()
}
