// Package runtime implements the configuration explorer: a level-synchronous breadth-first
// search over NPDA configurations that yields one frontier per call and decides acceptance
// by final state.
package runtime
