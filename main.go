package main

import "github.com/guimove/trainfit/cmd"

func main() {
	cmd.Execute()
}
