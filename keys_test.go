package auth_test

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	auth "github.com/storecraft/go-auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestPEMs(t *testing.T) (string, string) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	dir := t.TempDir()
	privPath := filepath.Join(dir, "private.pem")
	pubPath := filepath.Join(dir, "public.pem")

	privPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	require.NoError(t, os.WriteFile(privPath, privPEM, 0o600))

	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	pubPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: pubDER,
	})
	require.NoError(t, os.WriteFile(pubPath, pubPEM, 0o600))

	return privPath, pubPath
}

func TestLoadKeyPair(t *testing.T) {
	privPath, pubPath := writeTestPEMs(t)

	keys, err := auth.LoadKeyPair(privPath, pubPath)
	require.NoError(t, err)
	require.NotNil(t, keys.Private)
	require.NotNil(t, keys.Public)

	assert.Equal(t, keys.Private.PublicKey.N, keys.Public.N)
}

func TestLoadKeyPairMissingFile(t *testing.T) {
	_, pubPath := writeTestPEMs(t)

	_, err := auth.LoadKeyPair(filepath.Join(t.TempDir(), "nope.pem"), pubPath)
	assert.Error(t, err)
}

func TestLoadKeyPairBadPEM(t *testing.T) {
	dir := t.TempDir()
	badPath := filepath.Join(dir, "bad.pem")
	require.NoError(t, os.WriteFile(badPath, []byte("not a pem"), 0o600))

	privPath, _ := writeTestPEMs(t)

	_, err := auth.LoadKeyPair(privPath, badPath)
	assert.Error(t, err)

	_, err = auth.LoadKeyPair(badPath, badPath)
	assert.Error(t, err)
}

func TestLoadedKeysSignAndVerify(t *testing.T) {
	privPath, pubPath := writeTestPEMs(t)

	keys, err := auth.LoadKeyPair(privPath, pubPath)
	require.NoError(t, err)

	svc := auth.NewTokenService(keys, testOrigin, nil)

	token, err := svc.Issue(map[string]any{"authorized": true}, nil)
	require.NoError(t, err)

	_, err = svc.Verify(token)
	assert.NoError(t, err)
}
