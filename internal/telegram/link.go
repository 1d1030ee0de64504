package telegram

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidLinkToken = errors.New("invalid link token")
	ErrExpiredLinkToken = errors.New("expired link token")
)

// LinkPayload is the deep-link token body tying one order to one user
// for the duration of the linking window.
type LinkPayload struct {
	UserID    uint  `json:"user_id"`
	OrderID   uint  `json:"order_id"`
	Timestamp int64 `json:"timestamp"`
	Expiry    int64 `json:"expiry"`
}

// LinkCodec encrypts link payloads with AES-256-CBC. The wire format is
// "<iv hex>:<ciphertext hex>"; the key is the configured secret padded
// with zero bytes or truncated to 32 bytes.
type LinkCodec struct {
	key     []byte
	botName string
}

func NewLinkCodec(secret, botName string) *LinkCodec {
	key := make([]byte, 32)
	copy(key, []byte(secret))
	return &LinkCodec{key: key, botName: botName}
}

// Encode builds a token valid for ttl.
func (c *LinkCodec) Encode(userID, orderID uint, ttl time.Duration) (string, error) {
	now := time.Now()
	payload := LinkPayload{
		UserID:    userID,
		OrderID:   orderID,
		Timestamp: now.Unix(),
		Expiry:    now.Add(ttl).Unix(),
	}
	plain, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", err
	}
	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return "", err
	}
	padded := pkcs7Pad(plain, aes.BlockSize)
	ct := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ct, padded)

	return hex.EncodeToString(iv) + ":" + hex.EncodeToString(ct), nil
}

// Decode rejects malformed, tampered and expired tokens.
func (c *LinkCodec) Decode(token string) (*LinkPayload, error) {
	parts := strings.SplitN(token, ":", 2)
	if len(parts) != 2 {
		return nil, ErrInvalidLinkToken
	}
	iv, err := hex.DecodeString(parts[0])
	if err != nil || len(iv) != aes.BlockSize {
		return nil, ErrInvalidLinkToken
	}
	ct, err := hex.DecodeString(parts[1])
	if err != nil || len(ct) == 0 || len(ct)%aes.BlockSize != 0 {
		return nil, ErrInvalidLinkToken
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return nil, err
	}
	plain := make([]byte, len(ct))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, ct)
	plain, err = pkcs7Unpad(plain, aes.BlockSize)
	if err != nil {
		return nil, ErrInvalidLinkToken
	}

	var payload LinkPayload
	if err := json.Unmarshal(plain, &payload); err != nil {
		return nil, ErrInvalidLinkToken
	}
	if payload.UserID == 0 || payload.OrderID == 0 {
		return nil, ErrInvalidLinkToken
	}
	if time.Now().Unix() > payload.Expiry {
		return nil, ErrExpiredLinkToken
	}
	return &payload, nil
}

// DeepLink wraps a token into the t.me start link shown on the order page.
func (c *LinkCodec) DeepLink(token string) string {
	return fmt.Sprintf("https://t.me/%s?start=%s", c.botName, token)
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, ErrInvalidLinkToken
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize || n > len(data) {
		return nil, ErrInvalidLinkToken
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, ErrInvalidLinkToken
		}
	}
	return data[:len(data)-n], nil
}
