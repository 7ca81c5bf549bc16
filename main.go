package main

import "github.com/tkarna/hpclauncher/cmd"

func main() {
	cmd.Execute()
}
