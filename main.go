package main

import "github.com/bz888/agent-relay/cmd"

func main() {
	cmd.Execute()
}
