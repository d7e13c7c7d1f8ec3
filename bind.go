//go:build !debug

package main

// DefaultBindIP is the IPv4 address served on when none is given. Release builds sit behind a reverse proxy on the
// same host, so they only listen on loopback.
const DefaultBindIP = "127.0.0.1"
