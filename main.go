package main

import "intakeform/pkg/cli"

func main() {
	cli.Execute()
}
