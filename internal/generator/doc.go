// Package generator runs a complete playlist build: scan the root, resolve
// durations, render XSPF and, for Generate, write the file atomically.
//
// Every run gets a build ID (a random UUID) that prefixes its log lines, and
// records the Build* metrics. Failures are reported with the stage they
// happened in; see Stage.
package generator
