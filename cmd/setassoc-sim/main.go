// Command setassoc-sim replays key access traces against
// cache policies and reports their hit rates.
package main

import "github.com/djdv/go-setassoc/cmd/setassoc-sim/cmd"

func main() {
	cmd.Execute()
}
