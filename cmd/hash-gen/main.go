package main

import (
	"fmt"
	"log"
	"os"

	"syncchat.backend/pkg/crypto"
)

var (
	printfFn       = fmt.Printf
	generateHashFn = crypto.HashPassword
	fatalfFn       = log.Fatalf
)

// resolvePassword takes the password from args, falling back to PASSWORD
func resolvePassword(args []string) (string, bool) {
	if len(args) > 0 && args[0] != "" {
		return args[0], true
	}
	if p := os.Getenv("PASSWORD"); p != "" {
		return p, true
	}
	return "", false
}

func main() {
	password, ok := resolvePassword(os.Args[1:])
	if !ok {
		fatalfFn("usage: hash-gen <password> (or set PASSWORD)")
		return
	}

	hash, err := generateHashFn(password)
	if err != nil {
		fatalfFn("Failed to hash password: %v", err)
		return
	}

	printfFn("Bcrypt Hash: %s\n", hash)
}
