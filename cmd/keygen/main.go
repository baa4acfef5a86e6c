// Keygen generates the ECDSA keypair the API validates tokens with, and can
// mint a signed token for local testing.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"admissions-back/internal/model"
	"admissions-back/pkg/jwt"
)

func main() {
	var (
		privatePath = flag.String("private", "private.pem", "path to write the EC private key")
		publicPath  = flag.String("public", "public.pem", "path to write the EC public key")
		mint        = flag.Bool("mint", false, "mint a token with the private key instead of generating a keypair")
		uid         = flag.String("uid", "dev", "user id claim for the minted token")
		email       = flag.String("email", "dev@admissions.local", "email claim for the minted token")
		ttl         = flag.Duration("ttl", 24*time.Hour, "lifetime of the minted token")
	)
	flag.Parse()

	if *mint {
		privateKey, err := jwt.LoadECDSAPrivateKey(*privatePath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		token, err := jwt.NewToken(privateKey, *ttl,
			jwt.WithClaim(model.UserUIDKey, *uid),
			jwt.WithClaim(model.UserEmailKey, *email),
		)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		fmt.Println(token)

		return
	}

	jwt.MustECDSAGenerateKeys(*privatePath, *publicPath)

	fmt.Printf("wrote %s and %s\n", *privatePath, *publicPath)
}
