// Command statuslog maintains a per-athlete daily status log.
package main

import (
	"os"

	"github.com/roach88/statuslog/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:], os.Stdout, os.Stderr))
}
