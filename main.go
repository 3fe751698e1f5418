package main

import "docuvault/cmd"

func main() {
	cmd.Execute()
}
