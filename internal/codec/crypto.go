package codec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp/armor"
	"github.com/ProtonMail/go-crypto/openpgp/packet"
	openpgp "github.com/ProtonMail/go-crypto/openpgp/v2"

	"tasksync/internal/service"
)

const messageType = "PGP MESSAGE"

// ErrDecryption is returned for a wrong passphrase or a malformed envelope.
// It always comes wrapped together with service.ErrDataCorrupted.
var ErrDecryption = errors.New("decryption failed")

var errWrongPassphrase = errors.New("wrong passphrase")

var pgpConfig = &packet.Config{
	DefaultCipher: packet.CipherAES256,
}

// Encrypt seals text in an armored OpenPGP message protected by passphrase.
// Every call uses a fresh salt and session key.
func Encrypt(ctx context.Context, plain, passphrase string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if passphrase == "" {
		return "", fmt.Errorf("encryption passphrase is empty")
	}

	var buf bytes.Buffer
	aw, err := armor.Encode(&buf, messageType, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create armor: %w", err)
	}
	pw, err := openpgp.SymmetricallyEncrypt(aw, []byte(passphrase), &openpgp.FileHints{IsUTF8: true}, pgpConfig)
	if err != nil {
		return "", fmt.Errorf("failed to start encryption: %w", err)
	}
	if _, err := io.WriteString(pw, plain); err != nil {
		return "", fmt.Errorf("failed to encrypt: %w", err)
	}
	if err := pw.Close(); err != nil {
		return "", fmt.Errorf("failed to finish encryption: %w", err)
	}
	if err := aw.Close(); err != nil {
		return "", fmt.Errorf("failed to finish armor: %w", err)
	}
	return buf.String(), nil
}

// Decrypt opens an envelope produced by Encrypt.
func Decrypt(ctx context.Context, envelope, passphrase string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	block, err := armor.Decode(strings.NewReader(envelope))
	if err != nil {
		return "", decryptionError(err)
	}
	if block.Type != messageType {
		return "", decryptionError(fmt.Errorf("unexpected armor type %q", block.Type))
	}

	// ReadMessage keeps asking while the passphrase fails; answer once.
	asked := false
	prompt := func(keys []openpgp.Key, symmetric bool) ([]byte, error) {
		if !symmetric || asked {
			return nil, errWrongPassphrase
		}
		asked = true
		return []byte(passphrase), nil
	}

	md, err := openpgp.ReadMessage(block.Body, openpgp.EntityList{}, prompt, pgpConfig)
	if err != nil {
		return "", decryptionError(err)
	}
	plain, err := io.ReadAll(md.UnverifiedBody)
	if err != nil {
		return "", decryptionError(err)
	}
	return string(plain), nil
}

func decryptionError(err error) error {
	return fmt.Errorf("%w: %w: %v", service.ErrDataCorrupted, ErrDecryption, err)
}
