package main

import "github.com/edulane/edulane-go/cmd/edulane/cmd"

func main() {
	cmd.Execute()
}
