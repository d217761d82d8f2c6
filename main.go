package main

import "github.com/helixkit/userstore/cmd"

func main() {
	cmd.Execute()
}
