package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/wolfeidau/taskscope/internal/auth"
	"github.com/wolfeidau/taskscope/internal/logger"
)

type KeygenCmd struct {
	SigningKeyOut string `help:"where to write the private signing key" default:"jwt-signing-key.pem"`
	PublicKeyOut  string `help:"where to write the public key" default:"jwt-public-key.pem"`
	Force         bool   `help:"overwrite existing files"`
}

func (k *KeygenCmd) Run(ctx context.Context, globals *Globals) error {
	log := logger.Setup(globals.Debug)

	privatePEM, publicPEM, err := auth.GenerateSigningKey()
	if err != nil {
		return err
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if k.Force {
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}

	if err := writeFile(k.SigningKeyOut, privatePEM, flags, 0o600); err != nil {
		return err
	}
	if err := writeFile(k.PublicKeyOut, publicPEM, flags, 0o644); err != nil {
		return err
	}

	log.Info().
		Str("signing_key", k.SigningKeyOut).
		Str("public_key", k.PublicKeyOut).
		Msg("Generated ES256 key pair")

	return nil
}

func writeFile(path, content string, flags int, perm os.FileMode) error {
	f, err := os.OpenFile(path, flags, perm)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if _, err := f.WriteString(content); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return f.Close()
}
