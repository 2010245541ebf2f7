package main

import "github.com/krishkalaria12/foodies/cmd"

func main() {
	cmd.Execute()
}
