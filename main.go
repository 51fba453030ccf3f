package main

import "github.com/opsit-io/opsit-explang-core-sub000/cmd"

func main() {
	cmd.Execute()
}
