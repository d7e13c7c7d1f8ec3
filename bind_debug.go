//go:build debug

package main

// DefaultBindIP is the IPv4 address served on when none is given.
const DefaultBindIP = "0.0.0.0"
