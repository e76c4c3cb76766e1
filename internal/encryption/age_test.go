package encryption_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bitacora-go/internal/config"
	"bitacora-go/internal/encryption"
)

func newAgeEncryptor(t *testing.T) *encryption.AgeEncryptor {
	t.Helper()
	dir := t.TempDir()
	return encryption.NewAgeEncryptor(config.EncryptionConfig{
		Type:           "age",
		PublicKeyPath:  filepath.Join(dir, "keys", "bita.pub"),
		PrivateKeyPath: filepath.Join(dir, "keys", "bita.key"),
	})
}

func TestAgeEncryptor_Setup(t *testing.T) {
	enc := newAgeEncryptor(t)

	if enc.IsConfigured() {
		t.Fatal("IsConfigured() = true before Setup()")
	}

	if err := enc.Setup("test-passphrase"); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	if !enc.IsConfigured() {
		t.Error("IsConfigured() = false after Setup()")
	}
}

func TestAgeEncryptor_RoundTrip(t *testing.T) {
	enc := newAgeEncryptor(t)
	if err := enc.Setup("test-passphrase"); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	plaintext := "field journal entry about a trip to the coast"

	var ciphertext bytes.Buffer
	if err := enc.Encrypt(strings.NewReader(plaintext), &ciphertext); err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	if strings.Contains(ciphertext.String(), plaintext) {
		t.Error("ciphertext contains the plaintext")
	}

	dec, err := enc.Unlock("test-passphrase")
	if err != nil {
		t.Fatalf("Unlock() error = %v", err)
	}

	var decrypted bytes.Buffer
	if err := dec.Decrypt(bytes.NewReader(ciphertext.Bytes()), &decrypted); err != nil {
		t.Fatalf("Decrypt() error = %v", err)
	}
	if decrypted.String() != plaintext {
		t.Errorf("Decrypt() = %q, want original plaintext", decrypted.String())
	}
}

func TestAgeEncryptor_Unlock(t *testing.T) {
	t.Run("wrong passphrase", func(t *testing.T) {
		enc := newAgeEncryptor(t)
		if err := enc.Setup("correct-passphrase"); err != nil {
			t.Fatalf("Setup() error = %v", err)
		}

		if _, err := enc.Unlock("wrong-passphrase"); err == nil {
			t.Fatal("Unlock() expected error for wrong passphrase")
		}
	})

	t.Run("missing key files", func(t *testing.T) {
		enc := newAgeEncryptor(t)

		if _, err := enc.Unlock("any"); err == nil {
			t.Fatal("Unlock() expected error before Setup()")
		}
	})
}

func TestAgeEncryptor_KeyFiles(t *testing.T) {
	dir := t.TempDir()
	pubPath := filepath.Join(dir, "bita.pub")
	keyPath := filepath.Join(dir, "bita.key")
	enc := encryption.NewAgeEncryptor(config.EncryptionConfig{
		PublicKeyPath:  pubPath,
		PrivateKeyPath: keyPath,
	})

	if err := enc.Setup("pass"); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	pub, err := os.ReadFile(pubPath)
	if err != nil {
		t.Fatalf("reading public key: %v", err)
	}
	if !strings.HasPrefix(string(pub), "age1") {
		t.Errorf("public key = %q, want an age recipient", pub)
	}

	priv, err := os.ReadFile(keyPath)
	if err != nil {
		t.Fatalf("reading private key: %v", err)
	}
	if strings.Contains(string(priv), "AGE-SECRET-KEY-") {
		t.Error("private key file contains the raw identity, want it passphrase-encrypted")
	}
}
