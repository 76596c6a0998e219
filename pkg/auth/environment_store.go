package auth

import (
	"os"
	"time"
)

// Environment variables read by EnvironmentStore. They match the names
// read by the config package.
const (
	EnvConsumerKey    = "TWEETCRAWL_CONSUMER_KEY"
	EnvConsumerSecret = "TWEETCRAWL_CONSUMER_SECRET"
	EnvAccessToken    = "TWEETCRAWL_ACCESS_TOKEN"
	EnvAccessSecret   = "TWEETCRAWL_ACCESS_SECRET"
	EnvBearerToken    = "TWEETCRAWL_BEARER_TOKEN"
)

// EnvironmentStore implements CredentialStore over environment variables.
// It is read-only.
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based credential store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(account *Account) error {
	return ErrStoreUnavailable
}

// Retrieve builds an account from the environment. The name is "env"
// unless one is given.
func (e *EnvironmentStore) Retrieve(name string) (*Account, error) {
	account := &Account{
		Name:           name,
		ConsumerKey:    os.Getenv(EnvConsumerKey),
		ConsumerSecret: os.Getenv(EnvConsumerSecret),
		AccessToken:    os.Getenv(EnvAccessToken),
		AccessSecret:   os.Getenv(EnvAccessSecret),
		BearerToken:    os.Getenv(EnvBearerToken),
		LastModified:   time.Now(),
	}
	if account.Name == "" {
		account.Name = "env"
	}

	if account.Validate() != nil {
		return nil, ErrCredentialsNotFound
	}
	return account, nil
}

// List returns a single account if environment variables are set
func (e *EnvironmentStore) List() ([]*Account, error) {
	account, err := e.Retrieve("")
	if err != nil {
		return []*Account{}, nil
	}
	return []*Account{account}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(name string) error {
	return ErrStoreUnavailable
}

// Exists checks if usable environment credentials exist
func (e *EnvironmentStore) Exists(name string) bool {
	_, err := e.Retrieve(name)
	return err == nil
}
