package utils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SecretsDir - стандартный путь Docker Secrets. Переменная, чтобы тесты могли подменить каталог.
var SecretsDir = "/run/secrets"

// ErrSecretNotFound возвращается, когда секрет не найден ни в файле, ни в окружении.
var ErrSecretNotFound = errors.New("secret not found")

// ReadSecret читает секрет из файла в каталоге Docker Secrets.
func ReadSecret(secretName string) (string, error) {
	filePath := filepath.Join(SecretsDir, secretName)
	secretBytes, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read secret file %s: %w", filePath, err)
	}
	secret := strings.TrimSpace(string(secretBytes))
	if secret == "" {
		return "", fmt.Errorf("secret file %s is empty", filePath)
	}
	return secret, nil
}

// ReadSecretOrEnv сначала пробует файл секрета, затем переменную окружения envKey.
// Удобно для локального запуска без docker compose.
func ReadSecretOrEnv(secretName, envKey string) (string, error) {
	secret, fileErr := ReadSecret(secretName)
	if fileErr == nil {
		return secret, nil
	}
	if v := strings.TrimSpace(os.Getenv(envKey)); v != "" {
		return v, nil
	}
	return "", fmt.Errorf("%w: %s (env %s): %w", ErrSecretNotFound, secretName, envKey, fileErr)
}
