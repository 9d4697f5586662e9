// Package simulation drives an exploration step by step and turns every frontier into a slab of
// tree text.
//
// A Controller moves through four statuses:
//
//	idle --Initialize/Step--> exploring --Step--> accepted | rejected
//	  ^                                                      |
//	  +---------------------- Stop / Reset ------------------+
//
// Once accepted or rejected, Step is a no-op until the controller is reset. Play schedules Step
// on a timer until the run terminates, Pause is called, or the controller is stopped.
package simulation
