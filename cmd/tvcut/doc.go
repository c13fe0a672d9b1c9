// Package main hosts the tvcut CLI entrypoint and command graph.
//
// The Cobra-based command tree turns terminal invocations into pipeline
// runs, caption resyncs, chapter exports, calibration passes, and history
// queries. It centralizes configuration resolution, logger construction,
// and state database access so subcommands stay declarative.
//
// Errors are classified by internal/services markers and mapped to exit
// codes in main.
package main
