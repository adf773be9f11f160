// Package server wires and runs the application's HTTP transport.
//
// It provides orchestration of the server lifecycle: startup, background
// worker supervision, signal handling, and graceful shutdown.
package server
