package main

import (
	"fmt"

	"github.com/mark3labs/mcp-go/server"

	"cares/internal/catalog"
	"cares/internal/mcptools"
)

func runMCP(args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("usage: caresctl mcp")
	}
	return server.ServeStdio(mcptools.NewServer(catalog.Default()))
}
