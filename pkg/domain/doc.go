/*
Package domain contains the core domain models of the pdasim engine.

It defines the formal pushdown automaton and the snapshots produced while exploring it.
This package is kept pure and free of external dependencies like I/O or persistence,
following Hexagonal Architecture principles.

# Key Entities

  - Definition: The NPDA tuple (states, alphabets, transition function, initial and final states).
  - Stack: An immutable symbol sequence whose index 0 is the top.
  - Configuration: A snapshot of one run (state, unread input, stack) tagged with its own and its parent's id.
  - Frontier: Every configuration reachable after a fixed number of expansion rounds.
  - Result: The three-way outcome of one exploration round (Frontier, Accepted, Rejected).
  - Snapshot: The persisted view of a simulation session.
*/
package domain
