package main

import "github.com/viberx/viberx/cmd"

func main() {
	cmd.Execute()
}
