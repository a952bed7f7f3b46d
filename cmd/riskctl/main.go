package main

import (
	"github.com/turtacn/cyberrisk/cmd/cli"
)

// main is the entry point for the riskctl command-line tool.
// main 是 riskctl 命令行工具的入口点。
func main() {
	cli.Execute()
}
