// Package mcp exposes the simulator as a Model Context Protocol server, so that agents can
// run inputs, check the examples of an automaton and export its transition diagram.
package mcp
