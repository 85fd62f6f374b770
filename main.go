package main

import "yowa/cmd"

func main() {
	cmd.Execute()
}
