package main

import "github.com/agentic-research/spreadjson/cmd"

func main() {
	cmd.Execute()
}
