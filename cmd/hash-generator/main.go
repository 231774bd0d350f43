// Command hash-generator prints bcrypt hashes for the passwords given as
// arguments, for seeding users directly into the database.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/phrazzld/taskboard-api/internal/service/auth"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	cost := flag.Int("cost", bcrypt.DefaultCost, "bcrypt cost factor")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: hash-generator [-cost N] password...\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	hasher := auth.NewBcryptHasher(*cost)
	failed := false
	for _, password := range flag.Args() {
		hash, err := hasher.Hash(password)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error generating hash: %v\n", err)
			failed = true
			continue
		}
		fmt.Printf("Password: %s\nHash: %s\n\n", password, hash)
	}
	if failed {
		os.Exit(1)
	}
}
