// Package encryption implements the symmetric cipher used to anonymize the
// PII of deactivated accounts. Output is deterministic: the same plaintext
// always yields the same ciphertext, because deactivated-account lookups
// compare ciphertext for equality instead of decrypting every row.
package encryption

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"errors"
	"fmt"
)

var (
	// ErrInvalidCiphertext is returned when decryption input is not valid
	// base64, not block-aligned, or carries broken padding.
	ErrInvalidCiphertext = errors.New("encryption: invalid ciphertext")
)

// Encryptor wraps AES-CBC with a fixed key and IV from configuration.
type Encryptor struct {
	key []byte
	iv  []byte
}

// New builds an Encryptor from base64-encoded key and IV material. The key
// must be 16, 24 or 32 bytes, the IV exactly one AES block.
func New(keyB64, ivB64 string) (*Encryptor, error) {
	key, err := base64.StdEncoding.DecodeString(keyB64)
	if err != nil {
		return nil, fmt.Errorf("encryption: decode key: %w", err)
	}
	iv, err := base64.StdEncoding.DecodeString(ivB64)
	if err != nil {
		return nil, fmt.Errorf("encryption: decode iv: %w", err)
	}

	switch len(key) {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("encryption: key must be 16, 24 or 32 bytes, got %d", len(key))
	}
	if len(iv) != aes.BlockSize {
		return nil, fmt.Errorf("encryption: iv must be %d bytes, got %d", aes.BlockSize, len(iv))
	}

	return &Encryptor{key: key, iv: iv}, nil
}

// Encrypt returns the base64-encoded AES-CBC encryption of plain.
func (e *Encryptor) Encrypt(plain string) (string, error) {
	block, err := aes.NewCipher(e.key)
	if err != nil {
		return "", fmt.Errorf("encryption: %w", err)
	}

	padded := pkcs7Pad([]byte(plain), aes.BlockSize)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, e.iv).CryptBlocks(out, padded)

	return base64.StdEncoding.EncodeToString(out), nil
}

// Decrypt reverses Encrypt. It fails with ErrInvalidCiphertext on any input
// that was not produced with the same key and IV.
func (e *Encryptor) Decrypt(cipherText string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(cipherText)
	if err != nil {
		return "", ErrInvalidCiphertext
	}
	if len(raw) == 0 || len(raw)%aes.BlockSize != 0 {
		return "", ErrInvalidCiphertext
	}

	block, err := aes.NewCipher(e.key)
	if err != nil {
		return "", fmt.Errorf("encryption: %w", err)
	}

	out := make([]byte, len(raw))
	cipher.NewCBCDecrypter(block, e.iv).CryptBlocks(out, raw)

	unpadded, err := pkcs7Unpad(out, aes.BlockSize)
	if err != nil {
		return "", ErrInvalidCiphertext
	}

	return string(unpadded), nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padding := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(padding)}, padding)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, ErrInvalidCiphertext
	}
	padding := int(data[len(data)-1])
	if padding == 0 || padding > blockSize {
		return nil, ErrInvalidCiphertext
	}
	for _, b := range data[len(data)-padding:] {
		if int(b) != padding {
			return nil, ErrInvalidCiphertext
		}
	}
	return data[:len(data)-padding], nil
}
