// Command astral validates and queries the model catalog and the provider
// adapter registry.
//
// Usage:
//
//	astral validate
//	astral resolve [-json] <provider> <identifier>
//	astral list [-json] [provider]
//	astral adapter [-json] <provider>
//	astral cost [-json] <provider> <identifier> <prompt> <cached> <output>
//
// Settings are read from the environment and from a .env file in the
// working directory; see internal/config.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/leofalp/astral/internal/config"
)

func main() {
	// A missing .env file is fine, the environment may hold everything.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "astral:", err)
		os.Exit(exitUsage)
	}
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, cfg))
}
