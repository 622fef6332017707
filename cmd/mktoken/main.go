// mktoken mints a development JWT for exercising a multi-tenant server
// locally. Not for production use: real deployments receive tokens from
// the identity provider.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/mlevkov/workbench/internal/server/auth"
)

func main() {
	var (
		sub      = flag.String("sub", "", "subject user id (default: random)")
		email    = flag.String("email", "dev@example.com", "email claim")
		secret   = flag.String("secret", os.Getenv("TOKEN_SECRET"), "HMAC secret")
		validity = flag.Duration("validity", time.Hour, "token lifetime")
	)
	flag.Parse()

	if *secret == "" {
		log.Fatal("no secret: pass -secret or set TOKEN_SECRET")
	}

	userID := uuid.New()
	if *sub != "" {
		var err error
		if userID, err = uuid.Parse(*sub); err != nil {
			log.Fatalf("invalid -sub: %v", err)
		}
	}

	token, err := auth.GenerateToken(userID, *email, []byte(*secret), *validity)
	if err != nil {
		log.Fatalf("generate token: %v", err)
	}

	fmt.Println(token)
	fmt.Fprintf(os.Stderr, "sub=%s email=%s expires=%s\n", userID, *email, time.Now().Add(*validity).Format(time.RFC3339))
}
