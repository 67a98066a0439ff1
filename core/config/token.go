package config

import (
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"
)

// keyringGet is swapped in tests; the real keychain is unavailable on CI hosts.
var keyringGet = keyring.Get

// resolveToken fills an empty token from the OS keychain when a keyring service is configured.
func resolveToken(tg *TelegramConfig) error {
	tg.Token = strings.TrimSpace(tg.Token)
	if tg.Token != "" {
		return nil
	}
	service := strings.TrimSpace(tg.KeyringService)
	if service == "" {
		return nil
	}
	account := strings.TrimSpace(tg.KeyringAccount)
	if account == "" {
		account = "bot_token"
	}
	secret, err := keyringGet(service, account)
	if err != nil {
		return fmt.Errorf("read telegram token from keyring %s/%s: %w", service, account, err)
	}
	tg.Token = strings.TrimSpace(secret)
	return nil
}
