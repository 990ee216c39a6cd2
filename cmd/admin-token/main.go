// admin-token mints an HS256 token carrying the ADMIN role, for calling
// /populate_tickets and /clear_cache on a server started with
// ADMIN_JWT_SECRET.
//
//	admin-token --secret "$ADMIN_JWT_SECRET" --subject bench --ttl 2h
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/iliyamo/radical-ticket/internal/utils"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	var secret, subject string
	var ttl time.Duration
	var withExpiry bool

	flagSet := pflag.NewFlagSet("admin-token", pflag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.StringVar(&secret, "secret", os.Getenv("ADMIN_JWT_SECRET"), "signing secret (default: $ADMIN_JWT_SECRET)")
	flagSet.StringVar(&subject, "subject", "admin", "token subject")
	flagSet.DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	flagSet.BoolVar(&withExpiry, "print-expiry", false, "print the expiry time on a second line")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintf(stdout, "Usage: admin-token [flags]\n\n%s", flagSet.FlagUsages())
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		fmt.Fprintf(stdout, "Usage: admin-token [flags]\n\n%s", flagSet.FlagUsages())
		return nil
	}
	if flagSet.NArg() > 0 {
		return fmt.Errorf("unexpected argument %q", flagSet.Arg(0))
	}
	if secret == "" {
		return errors.New("--secret is required (or set ADMIN_JWT_SECRET)")
	}

	tok, err := utils.NewAccessToken(secret, subject, utils.RoleAdmin, ttl)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, tok.Token)
	if withExpiry {
		fmt.Fprintln(stdout, tok.Exp.Format(time.RFC3339))
	}
	return nil
}
