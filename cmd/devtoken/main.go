// Command devtoken mints an access token for local testing.
//
//	devtoken -user 2 -role OWNER
//
// The secret is read from JWT_SECRET (a .env file is honoured).
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"

	"github.com/iliyamo/fantasy-auction/internal/utils"
)

func main() {
	_ = godotenv.Load()
	user := flag.Uint64("user", 0, "user id placed in the sub claim")
	role := flag.String("role", "OWNER", "OWNER or COMMISSIONER")
	ttl := flag.Int("ttl", 60, "lifetime in minutes")
	flag.Parse()

	secret := os.Getenv("JWT_SECRET")
	if *user == 0 || secret == "" {
		fmt.Fprintln(os.Stderr, "usage: JWT_SECRET=... devtoken -user <id> [-role OWNER|COMMISSIONER] [-ttl minutes]")
		os.Exit(2)
	}
	tok, err := utils.NewAccessToken(secret, *user, *role, *ttl, time.Now())
	if err != nil {
		fmt.Fprintln(os.Stderr, "devtoken:", err)
		os.Exit(1)
	}
	fmt.Println(tok.Token)
	fmt.Fprintf(os.Stderr, "expires %s (%s)\n", tok.Exp.Format(time.RFC3339), humanize.Time(tok.Exp))
}
