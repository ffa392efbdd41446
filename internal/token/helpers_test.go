package token_test

import (
	"crypto/hmac"
	"crypto/sha256"
)

func hmacSHA256(key []byte, body string) []byte {
	h := hmac.New(sha256.New, key)
	h.Write([]byte(body))
	return h.Sum(nil)
}
