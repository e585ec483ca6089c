// Command hubcontacts works with HubSpot CRM contacts from the shell.
package main

import "github.com/mesh-intelligence/hubcontacts/internal/cli"

func main() {
	cli.Execute()
}
