/*
Package scanner implements the built-in security scan collaborator.

ConfigScanner audits the running configuration and data directory:
missing or weak auth tokens, automation and health endpoints using
plaintext HTTP off-loopback, wide listen addresses and world-writable
data directories. It never touches the network, so scans are cheap
enough to run on the default hourly cadence.
*/
package scanner
