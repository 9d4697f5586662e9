/*
Package ports defines the driven ports (interfaces) of the simulator.

These interfaces decouple the core from external implementations, so the same sessions can be
kept in memory, on disk or in Redis, and automata can come from Go code, YAML files or a Loam
repository.

# Key Interfaces

  - DefinitionLoader: Retrieves authored automata (blueprints).
  - SnapshotStore: Persists and loads simulation sessions.
  - DistributedLocker: Serializes session access across replicas.
  - Simulator: The engine surface consumed by the HTTP and MCP adapters.
*/
package ports
