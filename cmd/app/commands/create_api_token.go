package commands

import (
	"fmt"
	"io"
	"log/slog"
)

// CredentialGenerator mints a bearer credential and its Argon2id hash.
type CredentialGenerator interface {
	Generate() (plain string, hashed string, err error)
}

// RunCreateAPIToken prints a new issuer API token. The plaintext goes to the client
// (API_TOKEN) and only the hash needs to be configured on the issuer.
func RunCreateAPIToken(generator CredentialGenerator, logger *slog.Logger, writer io.Writer, format string) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	plain, hashed, err := generator.Generate()
	if err != nil {
		return err
	}

	logger.Info("api token created")

	if format == "json" {
		return writeJSON(writer, map[string]string{
			"api_token":      plain,
			"api_token_hash": hashed,
		})
	}

	_, _ = fmt.Fprintln(writer, "# Client. The plaintext is shown once.")
	_, _ = fmt.Fprintf(writer, "API_TOKEN=%s\n", plain)
	_, _ = fmt.Fprintln(writer, "# Issuer. Append to the semicolon-separated list.")
	_, err = fmt.Fprintf(writer, "ISSUER_API_TOKEN_HASHES='%s'\n", hashed)
	return err
}
