package main

import "github.com/Looking4OffSwitch/claude-conversation-analysis/cmd"

func main() {
	cmd.Execute()
}
