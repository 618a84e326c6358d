package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"syncchat.backend/pkg/crypto"
)

const minSecretBytes = 16

func validateInputs(n int) error {
	if n < minSecretBytes {
		return fmt.Errorf("invalid bytes: %d (minimum %d)", n, minSecretBytes)
	}
	return nil
}

func buildSecret(n int) (string, error) {
	if err := validateInputs(n); err != nil {
		return "", err
	}
	return crypto.GenerateRandomToken(n)
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("secret-gen", flag.ContinueOnError)
	fs.SetOutput(out)
	n := fs.Int("bytes", 32, "random bytes in the secret")
	if err := fs.Parse(args); err != nil {
		return err
	}

	secret, err := buildSecret(*n)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(out, "Generated session signing secret")
	_, _ = fmt.Fprintf(out, "JWT_SECRET=%s\n", secret)
	return nil
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}
