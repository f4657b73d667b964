package main

import "github.com/mj1618/mobile-cli/cmd"

func main() {
	cmd.Execute()
}
