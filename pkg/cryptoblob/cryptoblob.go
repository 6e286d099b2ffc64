// Package cryptoblob шифрует значения сессии в формате, совместимом с CryptoJS.AES
// с парольной фразой: base64("Salted__" + соль + AES-256-CBC(PKCS#7)), ключ и IV из EVP_BytesToKey(MD5).
package cryptoblob

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	openssl "github.com/Luzifer/go-openssl/v4"
)

var ErrMalformed = errors.New("зашифрованный блок повреждён")

type Cipher struct {
	passphrase string
	engine     *openssl.OpenSSL
}

func New(passphrase string) *Cipher {
	return &Cipher{passphrase: passphrase, engine: openssl.New()}
}

// EncryptJSON сериализует v в JSON и шифрует со случайной солью.
func (c *Cipher) EncryptJSON(v any) (string, error) {
	plain, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("ошибка сериализации значения: %w", err)
	}
	blob, err := c.engine.EncryptBytes(c.passphrase, plain, openssl.BytesToKeyMD5)
	if err != nil {
		return "", fmt.Errorf("ошибка шифрования: %w", err)
	}
	return string(blob), nil
}

// DecryptJSON расшифровывает блок и разбирает JSON в v.
// Любая ошибка формата, пароля или содержимого возвращается как ErrMalformed.
func (c *Cipher) DecryptJSON(blob string, v any) error {
	plain, err := c.engine.DecryptBytes(c.passphrase, []byte(strings.TrimSpace(blob)), openssl.BytesToKeyMD5)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := json.Unmarshal(plain, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}
