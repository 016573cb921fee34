// Command cfgeom converts geometry layers to and from CF simple-geometry
// arrays.
package main

import "github.com/tingold/orb-cfgeom/internal/cli"

func main() {
	cli.Execute()
}
