package main

import "github.com/junaidrashid-git/storefront-api/commands"

func main() {
	commands.Execute()
}
