package main

import "github.com/sharadkumardubey/billify-trip-generator/cmd/billifyctl/commands"

func main() {
	commands.Execute()
}
