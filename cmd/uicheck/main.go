package main

import "github.com/devicelab-dev/uicheck/pkg/cli"

func main() {
	cli.Execute()
}
