package main

import "github.com/procwing/procwing/cmd"

func main() {
	cmd.Execute()
}
