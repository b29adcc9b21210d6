// socktrace inspects the socket tracer's configuration and wire format.
package main

import "github.com/aalemi-dev/sockettrace/internal/cli"

func main() {
	cli.Execute()
}
