package session

import (
	"crypto/rand"
	"encoding/hex"
)

// idBytes はセッションIDの乱数バイト数です。
const idBytes = 32

// NewID は推測不能なセッションIDを生成します。
func NewID() (string, error) {
	buf := make([]byte, idBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// validID は外部から渡されたIDの形式を確認します。
func validID(id string) bool {
	if len(id) != idBytes*2 {
		return false
	}
	_, err := hex.DecodeString(id)
	return err == nil
}
