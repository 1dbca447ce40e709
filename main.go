package main

import "github.com/harlequix/infopipe/cmd"

func main() {
	cmd.Execute()
}
