package main

import "github.com/lepinkainen/partly/cmd"

var execute = cmd.Execute

func main() {
	execute()
}
