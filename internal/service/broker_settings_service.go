package service

import (
	"fmt"
	"time"

	"github.com/fernet/fernet-go"
	"github.com/google/uuid"

	"github.com/rvanleeuwen/Sleeve-Rebalancer-Backend/internal/repository"
)

// BrokerSettingsService stores the brokerage API key used by the external
// order-submission layer. Keys are fernet-encrypted at rest.
type BrokerSettingsService struct {
	settingsRepo *repository.SettingsRepository
	key          *fernet.Key
}

// NewBrokerSettingsService creates a BrokerSettingsService from a
// base64-encoded fernet key.
func NewBrokerSettingsService(settingsRepo *repository.SettingsRepository, encodedKey string) (*BrokerSettingsService, error) {
	key, err := fernet.DecodeKey(encodedKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode fernet key: %w", err)
	}
	return &BrokerSettingsService{settingsRepo: settingsRepo, key: key}, nil
}

// SetAPIKey encrypts and stores the broker API key.
func (s *BrokerSettingsService) SetAPIKey(apiKey string) error {
	token, err := fernet.EncryptAndSign([]byte(apiKey), s.key)
	if err != nil {
		return fmt.Errorf("failed to encrypt broker API key: %w", err)
	}
	return s.settingsRepo.SetBrokerAPIKey(uuid.New().String(), string(token))
}

// GetAPIKey decrypts and returns the stored broker API key and when it was
// last updated.
func (s *BrokerSettingsService) GetAPIKey() (string, time.Time, error) {
	encrypted, updatedAt, err := s.settingsRepo.GetBrokerAPIKey()
	if err != nil {
		return "", time.Time{}, err
	}

	plaintext := fernet.VerifyAndDecrypt([]byte(encrypted), 0, []*fernet.Key{s.key})
	if plaintext == nil {
		return "", time.Time{}, fmt.Errorf("failed to decrypt stored broker API key")
	}
	return string(plaintext), updatedAt, nil
}
