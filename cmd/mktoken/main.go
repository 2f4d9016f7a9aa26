// mktoken mints a development session token with the same claim shape the
// identity provider issues, for local clients and manual testing.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"chat-relay/auth"
)

func main() {
	userID := flag.String("user", "", "user id to embed in the token")
	key := flag.String("key", os.Getenv("SESSION_KEY"), "signing key (defaults to SESSION_KEY)")
	duration := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	if *userID == "" || *key == "" {
		fmt.Fprintln(os.Stderr, "usage: mktoken -user <id> [-key <secret>] [-ttl 24h]")
		os.Exit(2)
	}

	token, err := auth.GenerateToken(*userID, []byte(*key), *duration)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to sign token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
