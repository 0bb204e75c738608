// Package driver wires the pipeline together for the command line: it loads
// and compiles grammar documents (with an optional on-disk cache), builds the
// translator registry and translates single files or whole trees in
// parallel.
package driver
