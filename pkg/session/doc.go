/*
Package session implements session management and persistence orchestration.

A session is a simulation snapshot: the blueprint, the input word, and how many
steps were taken. The Manager serializes access per session ID, combining an
in-process lock with an optional distributed lock so several replicas can share
one snapshot store.
*/
package session
