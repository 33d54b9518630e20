// Package main is the entry point for the fm-scout application
package main

import (
	"flag"
	"fmt"
	"os"
)

// Version is set during build using ldflags
var (
	version = "dev"
)

const usage = `fm-scout scores football-management player exports against positional roles.

Usage:
  fm-scout [-config file] <command> [flags] [args]

Commands:
  roles     list the role catalogue
  presets   list role presets
  import    import an HTML or CSV export and rank players
  imports   list saved imports
  rescore   re-score a saved import against selected roles
  serve     run the HTTP API
  version   print version information
`

func main() {
	configFlag := flag.String("config", "", "Path to a config file (default: .env in the working directory)")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	if args[0] == "version" {
		fmt.Printf("fm-scout version %s\n", version)
		return
	}

	a, err := newApp(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fm-scout: %v\n", err)
		os.Exit(1)
	}

	if err := a.run(args[0], args[1:]); err != nil {
		a.log.WithError(err).Error("Command failed")
		os.Exit(1)
	}
}
