package main

import "entracker/cmd"

func main() {
	cmd.Execute()
}
