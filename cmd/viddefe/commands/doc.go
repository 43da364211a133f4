// Package commands implements the viddefe command line: church, people,
// group, meeting, offering and geo commands plus the interactive browser.
//
// Storage and backend come from the layered YAML config and can be
// overridden with flags. The memory store is seeded with the demo data on
// every run.
package commands
