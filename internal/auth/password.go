package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// DefaultHashCost は bcrypt のコスト係数です。
const DefaultHashCost = 10

// maxPasswordBytes を超える入力は bcrypt が扱えません。
const maxPasswordBytes = 72

// HashPassword はソルト付きの一方向ハッシュを返します。
func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// ComparePassword は平文とハッシュが一致するかを返します。
// 比較は bcrypt 内部で定数時間で行われます。
// bcrypt は先頭72バイトしか見ないため、それより長い平文は一致しません。
func ComparePassword(hash, password string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		if len(password) > maxPasswordBytes {
			return false, nil
		}
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, err
	}
}
