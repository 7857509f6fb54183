// Command gagyelog is a terminal client for the gagyelog household ledger.
package main

import "github.com/gagyelog/gagyelog/cmd"

func main() {
	cmd.Execute()
}
