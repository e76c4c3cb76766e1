package core

import (
	"encoding/json"
	"fmt"
	"sync"
)

// Keys in the KV store owned by the account registry.
const (
	usersKey   = "users"
	sessionKey = "currentUser"
)

// seedAccounts are written the first time the registry touches an empty
// store. IDs, credentials and ordering are part of the stored contract.
var seedAccounts = []Account{
	{ID: "1", Username: "juanperez", Email: "juanperez@gmail.com", Password: "juan12345"},
	{ID: "2", Username: "davidisaac", Email: "davidisaac@gmail.com", Password: "dvd1234"},
	{ID: "3", Username: "bryanwill", Email: "bryanwill@gmail.com", Password: "bryan2345"},
}

// AccountRegistry manages the set of user accounts and the single current
// session. All mutations read the full "users" document, modify it in memory
// and write it back; a registry-wide mutex keeps that sequence single-writer.
type AccountRegistry struct {
	kv     KVStore
	logger Logger
	idgen  IDGenerator
	mu     sync.Mutex
}

// NewAccountRegistry creates an AccountRegistry over the given store.
func NewAccountRegistry(kv KVStore, logger Logger, idgen IDGenerator) *AccountRegistry {
	return &AccountRegistry{kv: kv, logger: logger, idgen: idgen}
}

// Initialize seeds the predefined accounts if no user collection exists yet.
// Idempotent; safe to call on every start.
func (r *AccountRegistry) Initialize() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.initializeLocked()
}

func (r *AccountRegistry) initializeLocked() error {
	_, ok, err := r.kv.Get(usersKey)
	if err != nil {
		return fmt.Errorf("checking user collection: %w", err)
	}
	if ok {
		return nil
	}

	if err := r.writeAccounts(seedAccounts); err != nil {
		return fmt.Errorf("seeding accounts: %w", err)
	}
	r.logger.Info("seeded predefined accounts", "count", len(seedAccounts))
	return nil
}

// Register creates a new account. The email and username must be unique
// across all accounts; violations return ErrDuplicateEmail or
// ErrDuplicateUsername and leave the collection unchanged. No credential
// policy is enforced here; that is the presentation layer's job.
func (r *AccountRegistry) Register(username, email, password string) (Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.initializeLocked(); err != nil {
		return Account{}, err
	}

	accounts, err := r.readAccounts()
	if err != nil {
		return Account{}, err
	}

	for _, a := range accounts {
		if a.Email == email {
			return Account{}, ErrDuplicateEmail
		}
	}
	for _, a := range accounts {
		if a.Username == username {
			return Account{}, ErrDuplicateUsername
		}
	}

	acct := Account{
		ID:       r.idgen.New(),
		Username: username,
		Email:    email,
		Password: password,
	}
	accounts = append(accounts, acct)

	if err := r.writeAccounts(accounts); err != nil {
		return Account{}, fmt.Errorf("persisting account: %w", err)
	}

	r.logger.Info("account registered", "username", username)
	return acct, nil
}

// Login matches email and password exactly (case-sensitive) against the
// stored accounts. On success the matched account becomes the current
// session; on mismatch it returns ErrInvalidCredentials and leaves any
// existing session in place.
func (r *AccountRegistry) Login(email, password string) (Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.initializeLocked(); err != nil {
		return Account{}, err
	}

	accounts, err := r.readAccounts()
	if err != nil {
		return Account{}, err
	}

	for _, a := range accounts {
		if a.Email == email && a.Password == password {
			data, err := json.Marshal(a)
			if err != nil {
				return Account{}, fmt.Errorf("encoding session: %w", err)
			}
			if err := r.kv.Set(sessionKey, string(data)); err != nil {
				return Account{}, fmt.Errorf("persisting session: %w", err)
			}
			r.logger.Info("login", "username", a.Username)
			return a, nil
		}
	}

	return Account{}, ErrInvalidCredentials
}

// CurrentSession returns the logged-in account, or nil when no session is
// active. Persistence failures degrade to "no session" with a logged warning
// rather than erroring: the caller's answer is the same either way.
func (r *AccountRegistry) CurrentSession() *Account {
	data, ok, err := r.kv.Get(sessionKey)
	if err != nil {
		r.logger.Warn("reading session", "error", err)
		return nil
	}
	if !ok {
		return nil
	}

	var acct Account
	if err := json.Unmarshal([]byte(data), &acct); err != nil {
		r.logger.Warn("decoding session", "error", err)
		return nil
	}
	return &acct
}

// Logout clears the current session. Idempotent.
func (r *AccountRegistry) Logout() error {
	if err := r.kv.Remove(sessionKey); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}

func (r *AccountRegistry) readAccounts() ([]Account, error) {
	data, ok, err := r.kv.Get(usersKey)
	if err != nil {
		return nil, fmt.Errorf("reading user collection: %w", err)
	}
	if !ok {
		return nil, nil
	}

	var accounts []Account
	if err := json.Unmarshal([]byte(data), &accounts); err != nil {
		return nil, fmt.Errorf("decoding user collection: %w", err)
	}
	return accounts, nil
}

func (r *AccountRegistry) writeAccounts(accounts []Account) error {
	data, err := json.Marshal(accounts)
	if err != nil {
		return fmt.Errorf("encoding user collection: %w", err)
	}
	return r.kv.Set(usersKey, string(data))
}
