package main

import "github.com/tbearden/depfetch/internal/cli"

func main() {
	cli.Execute()
}
