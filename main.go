package main

import "github.com/nextlevelbuilder/gptrelay/cmd"

func main() {
	cmd.Execute()
}
