package auth

import (
	"crypto/rsa"
	"os"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// KeyPair is the process-wide signing material. It is loaded once at startup
// and injected wherever tokens are signed or verified; there is no rotation.
type KeyPair struct {
	Private *rsa.PrivateKey
	Public  *rsa.PublicKey
}

// LoadKeyPair reads and parses the PEM encoded RSA keypair. Any failure here
// means the process cannot mint or check tokens and should not start.
func LoadKeyPair(privateKeyPath, publicKeyPath string) (*KeyPair, error) {
	privPEM, err := os.ReadFile(privateKeyPath)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "unable to read private key file").
			WithMetadata(map[string]any{"path": privateKeyPath})
	}

	priv, err := jwt.ParseRSAPrivateKeyFromPEM(privPEM)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "unable to parse private key PEM")
	}

	pubPEM, err := os.ReadFile(publicKeyPath)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "unable to read public key file").
			WithMetadata(map[string]any{"path": publicKeyPath})
	}

	pub, err := jwt.ParseRSAPublicKeyFromPEM(pubPEM)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "unable to parse public key PEM")
	}

	return &KeyPair{Private: priv, Public: pub}, nil
}

// MustLoadKeyPair is LoadKeyPair for process bootstrap: unreadable or
// malformed key material is fatal.
func MustLoadKeyPair(privateKeyPath, publicKeyPath string) *KeyPair {
	keys, err := LoadKeyPair(privateKeyPath, publicKeyPath)
	if err != nil {
		panic(err)
	}
	return keys
}
