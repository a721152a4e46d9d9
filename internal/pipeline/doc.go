// Package pipeline runs one poll: read the router, account traffic, publish
// to the bus and apply the midnight reset.
//
// All I/O goes through the small interfaces in ports.go; the accounting
// itself lives in internal/traffic.
package pipeline
