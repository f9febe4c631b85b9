// This program computes block digests, mines blocks offline and talks to a
// running node.
package main

import "github.com/ardanlabs/powledger/app/tooling/ledger/cmd"

func main() {
	cmd.Execute()
}
