package model

import (
	"crypto/sha256"
	"encoding/hex"
)

// Document is an uploaded file. Its identity is the SHA-256 of the raw bytes,
// so two uploads with identical content are the same document.
type Document struct {
	Name   string `json:"name"`
	Digest string `json:"digest"`
	Size   int    `json:"size"`
	Data   []byte `json:"-"`
}

func NewDocument(name string, data []byte) Document {
	return Document{
		Name:   name,
		Digest: Digest(data),
		Size:   len(data),
		Data:   data,
	}
}

func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
