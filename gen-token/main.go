// Command gen-token prints an HS256 bearer token accepted by the API when it
// runs with AUTH_MODE=hs256. The secret, audience and issuer come from the
// same environment as the server.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"

	"sofia-api/config"
)

var cli struct {
	Subject string        `arg:"" optional:"" default:"sofia" help:"User id placed in the sub claim."`
	TTL     time.Duration `default:"24h" help:"Token lifetime."`
}

func main() {
	kong.Parse(&cli,
		kong.Name("gen-token"),
		kong.Description("Mint a bearer token for the journal API."),
		kong.UsageOnError(),
	)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if cfg.JWTSecret == "" {
		fmt.Fprintln(os.Stderr, "Error: AUTH_JWT_SECRET must be set")
		os.Exit(1)
	}

	tok, err := signToken([]byte(cfg.JWTSecret), claimsFor(cli.Subject, cfg.Audience, cfg.Issuer, time.Now(), cli.TTL))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Print(tok)
}
