package identity

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"fmt"
)

// PasswordCodec decrypts the AES-128-CBC password blobs the PowerBuilder
// client writes into the directory. Key and IV are deployment constants;
// the plaintext encoding is ANSI (latin-1), not UTF-8.
type PasswordCodec struct {
	key []byte
	iv  []byte
}

// NewPasswordCodec validates the key material and builds a codec.
func NewPasswordCodec(key, iv string) (*PasswordCodec, error) {
	if len(key) != aes.BlockSize || len(iv) != aes.BlockSize {
		return nil, fmt.Errorf("cipher key and IV must be %d bytes", aes.BlockSize)
	}
	return &PasswordCodec{key: []byte(key), iv: []byte(iv)}, nil
}

// Decrypt recovers the plaintext password from a directory blob.
func (c *PasswordCodec) Decrypt(blob []byte) (string, error) {
	if len(blob) == 0 {
		return "", nil
	}
	if len(blob)%aes.BlockSize != 0 {
		return "", errors.New("encrypted blob is not block aligned")
	}
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", err
	}
	plain := make([]byte, len(blob))
	cipher.NewCBCDecrypter(block, c.iv).CryptBlocks(plain, blob)
	plain, err = pkcs7Unpad(plain)
	if err != nil {
		return "", err
	}
	return latin1String(plain), nil
}

// Encrypt is the inverse, kept for fixtures and seeding test directories.
func (c *PasswordCodec) Encrypt(password string) ([]byte, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return nil, err
	}
	padded := pkcs7Pad(latin1Bytes(password))
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, c.iv).CryptBlocks(out, padded)
	return out, nil
}

func pkcs7Pad(data []byte) []byte {
	padding := aes.BlockSize - len(data)%aes.BlockSize
	return append(data, bytes.Repeat([]byte{byte(padding)}, padding)...)
}

func pkcs7Unpad(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, errors.New("empty plaintext")
	}
	padding := int(data[len(data)-1])
	if padding == 0 || padding > aes.BlockSize || padding > len(data) {
		return nil, errors.New("invalid padding")
	}
	for _, b := range data[len(data)-padding:] {
		if int(b) != padding {
			return nil, errors.New("invalid padding")
		}
	}
	return data[:len(data)-padding], nil
}

// latin1String maps each byte to the code point of the same value.
func latin1String(data []byte) string {
	runes := make([]rune, len(data))
	for i, b := range data {
		runes[i] = rune(b)
	}
	return string(runes)
}

// latin1Bytes drops code points above 0xFF; directory passwords never
// contain them.
func latin1Bytes(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if r > 0xFF {
			r = '?'
		}
		out = append(out, byte(r))
	}
	return out
}
