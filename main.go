package main

import "github.com/mpapenbr/motorsport-analytics/cmd"

func main() {
	cmd.Execute()
}
