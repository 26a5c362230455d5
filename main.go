package main

import "github.com/Tiliavir/project-time-tracker/cmd"

func main() {
	cmd.Execute()
}
