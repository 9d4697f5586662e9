/*
Package pdasim simulates nondeterministic pushdown automata (NPDA) by exploring
their configurations breadth-first and drawing the exploration as an ASCII tree.

A configuration is a state, the unread input and the stack. Every step expands
the current frontier into all configurations reachable by one move, merges
duplicates, and renders the new level of the tree. A run accepts as soon as a
configuration with empty input sits in a final state, and rejects when no
configuration survives.

# Concept

Automata are authored as blueprints: rules written as d(q0,a,Z0)=(q0,AZ0) plus
a set of final states. The Engine compiles blueprints, drives simulations
through simulation.Controller, and keeps sessions in a ports.SnapshotStore.
Exploration is deterministic, so a session is stored as a step count and
restored by replaying it.

# Usage

	eng, err := pdasim.New("")
	if err != nil {
		log.Fatal(err)
	}

	bp := &domain.Blueprint{
		Rules: []string{"d(q0,a,Z0)=(q0,AZ0)", "d(q0,b,A)=(q1,ε)"},
		Final: []string{"q1"},
	}

	snap, err := eng.Simulate(context.Background(), bp, "ab")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(snap.Output)

For step-by-step control (auto-play, pause, reset) use Engine.NewController.
*/
package pdasim
