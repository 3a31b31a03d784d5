package main

import (
	"github.com/neovim/go-client/nvim/plugin"

	"nvim-markdown-preview/internal/host"
)

// The binary runs as a Neovim remote plugin: plugin.Main wires stdio to
// the msgpack-RPC session and keeps it alive until the host disconnects.
func main() {
	plugin.Main(host.Register)
}
