package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// SecurityMethod defines the credential storage method
type SecurityMethod string

const (
	SecurityPlainText SecurityMethod = "plaintext"
	SecuritySSHKey    SecurityMethod = "ssh_key"
)

// Well-known credential keys.
const (
	CredToken    = "session_token"
	CredUsername = "username"
)

// CredentialStore manages the saved login session, either plain text or
// encrypted with a local SSH key.
type CredentialStore struct {
	method      SecurityMethod
	credentials map[string]string
	sshKeyPath  string // path to SSH key (ssh_key method only)
	passphrase  string // Optional passphrase for encrypted keys
	encManager  *EncryptionManager
}

// NewCredentialStore creates a new credential store
func NewCredentialStore(method SecurityMethod, sshKeyPath string) *CredentialStore {
	return &CredentialStore{
		method:      method,
		credentials: make(map[string]string),
		sshKeyPath:  sshKeyPath,
	}
}

// SetPassphrase sets the passphrase for decrypting the SSH key
func (c *CredentialStore) SetPassphrase(passphrase string) {
	c.passphrase = passphrase
	if c.encManager != nil {
		c.encManager.SetPassphrase(passphrase)
	}
}

// Load loads credentials from disk based on the configured security method
func (c *CredentialStore) Load(dataDir string) error {
	switch c.method {
	case SecurityPlainText:
		creds, err := loadPlainText(dataDir)
		if err != nil {
			return err
		}
		c.credentials = creds
		return nil

	case SecuritySSHKey:
		creds, err := c.loadSSHEncrypted(dataDir)
		if err != nil {
			return err
		}
		c.credentials = creds
		return nil

	default:
		return fmt.Errorf("unknown security method: %s", c.method)
	}
}

// Save saves credentials to disk based on the configured security method
func (c *CredentialStore) Save(dataDir string) error {
	switch c.method {
	case SecurityPlainText:
		return savePlainText(dataDir, c.credentials)

	case SecuritySSHKey:
		return c.saveSSHEncrypted(dataDir)

	default:
		return fmt.Errorf("unknown security method: %s", c.method)
	}
}

// Get retrieves a stored credential
func (c *CredentialStore) Get(key string) string {
	return c.credentials[key]
}

// Set stores a credential
func (c *CredentialStore) Set(key string, value string) error {
	c.credentials[key] = value
	return nil
}

// Delete removes a credential
func (c *CredentialStore) Delete(key string) error {
	delete(c.credentials, key)
	return nil
}

// Token returns the saved session bearer token ("" when logged out)
func (c *CredentialStore) Token() string {
	return c.credentials[CredToken]
}

// SetSession stores the bearer token and the username it belongs to
func (c *CredentialStore) SetSession(username, token string) {
	c.credentials[CredUsername] = username
	c.credentials[CredToken] = token
}

// ClearSession removes the saved login session
func (c *CredentialStore) ClearSession() {
	delete(c.credentials, CredToken)
	delete(c.credentials, CredUsername)
}

// Username returns the account the saved token belongs to
func (c *CredentialStore) Username() string {
	return c.credentials[CredUsername]
}

// GetMethod returns the current security method
func (c *CredentialStore) GetMethod() SecurityMethod {
	return c.method
}

// credentialsPath returns the path to the plain text credentials file
func credentialsPath(dataDir string) string {
	return filepath.Join(dataDir, "credentials.toml")
}

// encryptedCredentialsPath returns the path to the encrypted credentials file
func encryptedCredentialsPath(dataDir string) string {
	return filepath.Join(dataDir, "credentials.enc")
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ===== Plain Text Storage =====

// loadPlainText loads credentials from plain text TOML file
func loadPlainText(dataDir string) (map[string]string, error) {
	path := credentialsPath(dataDir)

	// If file doesn't exist, return empty map (no error)
	if !fileExists(path) {
		return make(map[string]string), nil
	}

	type credentialsFile struct {
		Credentials map[string]string `toml:"credentials"`
	}

	var cf credentialsFile
	if _, err := toml.DecodeFile(path, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse credentials file: %w", err)
	}

	return cf.Credentials, nil
}

// savePlainText saves credentials to plain text TOML file with 0600 permissions
func savePlainText(dataDir string, creds map[string]string) error {
	path := credentialsPath(dataDir)

	type credentialsFile struct {
		Credentials map[string]string `toml:"credentials"`
	}

	cf := credentialsFile{
		Credentials: creds,
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create credentials file: %w", err)
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(cf); err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}

	return nil
}

// ===== SSH Key Encrypted Storage =====

// loadSSHEncrypted loads and decrypts credentials using SSH key encryption
func (c *CredentialStore) loadSSHEncrypted(dataDir string) (map[string]string, error) {
	path := encryptedCredentialsPath(dataDir)

	// If file doesn't exist, return empty map (no error)
	if !fileExists(path) {
		return make(map[string]string), nil
	}

	// Reinitialize if manager doesn't exist OR if we now have a passphrase
	if c.encManager == nil || c.passphrase != "" {
		c.encManager = NewEncryptionManager(EncryptionSSHKey, c.sshKeyPath)
		c.encManager.SetPassphrase(c.passphrase)
		if err := c.encManager.Initialize(); err != nil {
			return nil, fmt.Errorf("failed to initialize encryption: %w", err)
		}
	}

	encryptedData, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read encrypted credentials: %w", err)
	}

	decryptedData, err := c.encManager.Decrypt(encryptedData)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt credentials: %w", err)
	}

	var creds map[string]string
	if err := json.Unmarshal(decryptedData, &creds); err != nil {
		return nil, fmt.Errorf("failed to parse decrypted credentials: %w", err)
	}

	return creds, nil
}

// saveSSHEncrypted encrypts and saves credentials using SSH key encryption
func (c *CredentialStore) saveSSHEncrypted(dataDir string) error {
	path := encryptedCredentialsPath(dataDir)

	// Reinitialize if manager doesn't exist OR if we now have a passphrase
	if c.encManager == nil || c.passphrase != "" {
		c.encManager = NewEncryptionManager(EncryptionSSHKey, c.sshKeyPath)
		c.encManager.SetPassphrase(c.passphrase)
		if err := c.encManager.Initialize(); err != nil {
			return fmt.Errorf("failed to initialize encryption: %w", err)
		}
	}

	jsonData, err := json.MarshalIndent(c.credentials, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize credentials: %w", err)
	}

	encryptedData, err := c.encManager.Encrypt(jsonData)
	if err != nil {
		return fmt.Errorf("failed to encrypt credentials: %w", err)
	}

	if err := os.WriteFile(path, encryptedData, 0600); err != nil {
		return fmt.Errorf("failed to write encrypted credentials: %w", err)
	}

	return nil
}
