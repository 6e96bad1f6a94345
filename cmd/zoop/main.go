package main

import (
	"github.com/zig-whatwg/zoop/cmd/zoop/commands"
)

func main() {
	commands.Execute()
}
