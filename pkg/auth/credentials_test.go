package auth

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/zalando/go-keyring"
	"tweetcrawl/pkg/config"
)

func testAccount(name string) *Account {
	return &Account{
		Name:           name,
		ConsumerKey:    "consumer_key_12345",
		ConsumerSecret: "consumer_secret_67890",
		AccessToken:    "1234-access_token_abcdef",
		AccessSecret:   "access_secret_ghijkl",
	}
}

func TestCredentialManager(t *testing.T) {
	manager, mockStore := NewMockManager()

	account := testAccount("research")
	if err := manager.Store(account); err != nil {
		t.Fatalf("Failed to store account: %v", err)
	}
	if account.LastModified.IsZero() {
		t.Error("Store should set LastModified")
	}

	retrieved, err := manager.Retrieve("research")
	if err != nil {
		t.Fatalf("Failed to retrieve account: %v", err)
	}
	if retrieved.ConsumerKey != account.ConsumerKey || retrieved.AccessSecret != account.AccessSecret {
		t.Errorf("Credential mismatch: got %+v", retrieved)
	}

	accounts, err := manager.List()
	if err != nil {
		t.Fatalf("Failed to list accounts: %v", err)
	}
	if len(accounts) != 1 {
		t.Errorf("Expected 1 account, got %d", len(accounts))
	}

	if err := manager.Delete("research"); err != nil {
		t.Errorf("Failed to delete account: %v", err)
	}
	if _, err := manager.Retrieve("research"); !errors.Is(err, ErrCredentialsNotFound) {
		t.Errorf("Expected ErrCredentialsNotFound, got %v", err)
	}
	if mockStore.Count() != 0 {
		t.Errorf("Expected 0 accounts after deletion, got %d", mockStore.Count())
	}
	if err := manager.Delete("research"); !errors.Is(err, ErrCredentialsNotFound) {
		t.Errorf("Expected ErrCredentialsNotFound deleting twice, got %v", err)
	}
}

func TestAccountValidate(t *testing.T) {
	tests := []struct {
		name    string
		account *Account
		wantErr bool
	}{
		{"user context", testAccount("a"), false},
		{"bearer only", &Account{Name: "a", BearerToken: "AAAA"}, false},
		{"missing name", &Account{BearerToken: "AAAA"}, true},
		{"partial user context", &Account{Name: "a", ConsumerKey: "k", ConsumerSecret: "s"}, true},
		{"empty", &Account{Name: "a"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.account.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestManagerStoreRejectsInvalid(t *testing.T) {
	manager, mockStore := NewMockManager()

	err := manager.Store(&Account{Name: "a", ConsumerKey: "only"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials, got %v", err)
	}
	if mockStore.Count() != 0 {
		t.Error("Invalid account should not be stored")
	}
}

func TestManagerFallback(t *testing.T) {
	failing := NewMockStore()
	failing.StoreError = errors.New("keychain locked")
	working := NewMockStore()

	manager := NewManagerWithStores(failing, working)
	if err := manager.Store(testAccount("fallback")); err != nil {
		t.Fatalf("Expected fallback store to accept account: %v", err)
	}
	if working.Count() != 1 {
		t.Error("Expected account in fallback store")
	}

	working.StoreError = errors.New("disk full")
	if err := manager.Store(testAccount("other")); err == nil {
		t.Error("Expected error when every store fails")
	}
}

func TestRetrieveDefault(t *testing.T) {
	for _, env := range []string{EnvConsumerKey, EnvConsumerSecret, EnvAccessToken, EnvAccessSecret, EnvBearerToken} {
		t.Setenv(env, "")
	}

	store := NewMockStore()
	older := testAccount("older")
	older.LastModified = time.Now().Add(-time.Hour)
	newer := testAccount("newer")
	newer.LastModified = time.Now()
	_ = store.Store(older)
	_ = store.Store(newer)

	manager := NewManagerWithStores(store, NewEnvironmentStore())
	account, err := manager.RetrieveDefault()
	if err != nil {
		t.Fatalf("RetrieveDefault() error = %v", err)
	}
	if account.Name != "newer" {
		t.Errorf("Expected most recent account, got %s", account.Name)
	}

	t.Setenv(EnvBearerToken, "env-bearer")
	account, err = manager.RetrieveDefault()
	if err != nil {
		t.Fatalf("RetrieveDefault() error = %v", err)
	}
	if account.Name != "env" || account.BearerToken != "env-bearer" {
		t.Errorf("Expected environment account, got %+v", account)
	}

	empty := NewManagerWithStores(NewMockStore())
	if _, err := empty.RetrieveDefault(); !errors.Is(err, ErrCredentialsNotFound) {
		t.Errorf("Expected ErrCredentialsNotFound, got %v", err)
	}
}

func TestApplyTo(t *testing.T) {
	cfg := &config.TwitterConfig{AccessToken: "from-flag"}
	testAccount("a").ApplyTo(cfg)

	if cfg.ConsumerKey != "consumer_key_12345" {
		t.Errorf("Expected consumer key from account, got %q", cfg.ConsumerKey)
	}
	if cfg.AccessToken != "from-flag" {
		t.Errorf("Existing value should win, got %q", cfg.AccessToken)
	}
}

func TestSanitizeAccount(t *testing.T) {
	account := testAccount("research")
	sanitized := SanitizeAccount(account)

	if sanitized.Name != account.Name {
		t.Error("Name should not be masked")
	}
	if sanitized.ConsumerSecret == account.ConsumerSecret || !strings.Contains(sanitized.ConsumerSecret, "...") {
		t.Errorf("ConsumerSecret should be masked, got %q", sanitized.ConsumerSecret)
	}
	if sanitized.BearerToken != "" {
		t.Errorf("Empty values should stay empty, got %q", sanitized.BearerToken)
	}
	if SanitizeAccount(nil) != nil {
		t.Error("SanitizeAccount(nil) should be nil")
	}
	if maskString("short") != "********" {
		t.Error("Short values should be fully masked")
	}
}

func TestEncryptedFileStore(t *testing.T) {
	t.Setenv(PassphraseEnv, "test-passphrase")
	path := filepath.Join(t.TempDir(), "creds", "credentials.enc")

	store, err := NewEncryptedFileStore(path)
	if err != nil {
		t.Fatalf("Failed to create encrypted store: %v", err)
	}

	accounts, err := store.List()
	if err != nil || len(accounts) != 0 {
		t.Fatalf("Expected empty store, got %v, %v", accounts, err)
	}

	if err := store.Store(testAccount("one")); err != nil {
		t.Fatalf("Failed to store account: %v", err)
	}
	if err := store.Store(&Account{Name: "two", BearerToken: "AAAA-bearer"}); err != nil {
		t.Fatalf("Failed to store account: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	if strings.Contains(string(content), "consumer_secret_67890") || strings.Contains(string(content), "AAAA-bearer") {
		t.Error("Secrets should not appear in plaintext")
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Failed to stat file: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Expected 0600 permissions, got %o", info.Mode().Perm())
	}

	// A second store with the same passphrase reads the same data.
	reopened, err := NewEncryptedFileStore(path)
	if err != nil {
		t.Fatalf("Failed to reopen store: %v", err)
	}
	got, err := reopened.Retrieve("two")
	if err != nil || got.BearerToken != "AAAA-bearer" {
		t.Errorf("Retrieve() = %+v, %v", got, err)
	}
	if !reopened.Exists("one") || reopened.Exists("three") {
		t.Error("Exists() mismatch")
	}

	t.Setenv(PassphraseEnv, "wrong-passphrase")
	wrong, err := NewEncryptedFileStore(path)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	if _, err := wrong.Retrieve("one"); err == nil {
		t.Error("Expected decryption failure with wrong passphrase")
	}

	if err := store.Delete("one"); err != nil {
		t.Errorf("Delete() error = %v", err)
	}
	if err := store.Delete("two"); err != nil {
		t.Errorf("Delete() error = %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Expected file removed with its last account")
	}
	if err := store.Delete("two"); !errors.Is(err, ErrCredentialsNotFound) {
		t.Errorf("Expected ErrCredentialsNotFound, got %v", err)
	}
}

func TestEncryptedFileStoreGeneratesPassphrase(t *testing.T) {
	t.Setenv(PassphraseEnv, "")
	dir := t.TempDir()

	store, err := NewEncryptedFileStore(filepath.Join(dir, "credentials.enc"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	content, err := os.ReadFile(filepath.Join(dir, ".passphrase"))
	if err != nil || len(content) == 0 {
		t.Fatalf("Expected generated passphrase file: %v", err)
	}
	if string(content) != store.passphrase {
		t.Error("Store should use the saved passphrase")
	}
}

func TestEncryptDecrypt(t *testing.T) {
	key := deriveKey("secret", []byte("0123456789abcdef0123456789abcdef"))

	sealed, err := encrypt([]byte("hello"), key)
	if err != nil {
		t.Fatalf("encrypt() error = %v", err)
	}
	plain, err := decrypt(sealed, key)
	if err != nil || string(plain) != "hello" {
		t.Errorf("decrypt() = %q, %v", plain, err)
	}

	if _, err := decrypt([]byte("x"), key); err == nil {
		t.Error("Expected error for short ciphertext")
	}
}

func TestEnvironmentStore(t *testing.T) {
	for _, env := range []string{EnvConsumerKey, EnvConsumerSecret, EnvAccessToken, EnvAccessSecret, EnvBearerToken} {
		t.Setenv(env, "")
	}
	store := NewEnvironmentStore()

	if store.Exists("") {
		t.Error("Expected no environment credentials")
	}

	t.Setenv(EnvConsumerKey, "ck")
	t.Setenv(EnvConsumerSecret, "cs")
	t.Setenv(EnvAccessToken, "at")
	t.Setenv(EnvAccessSecret, "as")

	account, err := store.Retrieve("")
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if account.Name != "env" || !account.HasUserContext() {
		t.Errorf("Unexpected account %+v", account)
	}
	if err := store.Store(account); !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("Expected ErrStoreUnavailable, got %v", err)
	}
	if err := store.Delete("env"); !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("Expected ErrStoreUnavailable, got %v", err)
	}
}

func TestKeyringStore(t *testing.T) {
	keyring.MockInit()

	store, err := NewKeyringStore()
	if err != nil {
		t.Fatalf("NewKeyringStore() error = %v", err)
	}

	if err := store.Store(testAccount("alpha")); err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	if err := store.Store(&Account{Name: "beta", BearerToken: "b"}); err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	accounts, err := store.List()
	if err != nil || len(accounts) != 2 {
		t.Fatalf("List() = %v, %v", accounts, err)
	}

	got, err := store.Retrieve("alpha")
	if err != nil || got.ConsumerKey != "consumer_key_12345" {
		t.Errorf("Retrieve() = %+v, %v", got, err)
	}

	if err := store.Delete("alpha"); err != nil {
		t.Errorf("Delete() error = %v", err)
	}
	if store.Exists("alpha") {
		t.Error("Expected alpha deleted")
	}
	if err := store.Delete("alpha"); !errors.Is(err, ErrCredentialsNotFound) {
		t.Errorf("Expected ErrCredentialsNotFound, got %v", err)
	}

	accounts, _ = store.List()
	if len(accounts) != 1 || accounts[0].Name != "beta" {
		t.Errorf("Expected only beta listed, got %v", accounts)
	}
}

func TestShowCredentialGuide(t *testing.T) {
	var buf bytes.Buffer
	ShowCredentialGuide(&buf)
	if !strings.Contains(buf.String(), "Keys and tokens") {
		t.Error("Guide should mention the Keys and tokens page")
	}

	buf.Reset()
	ShowQuickGuide(&buf)
	if !strings.Contains(buf.String(), "bearer token") {
		t.Error("Quick guide should mention the bearer token")
	}
}
