package remote

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/existflow/trinote/internal/config"
	"github.com/existflow/trinote/internal/model"
)

const envelopeVersion = 1

// payload is the stored document. Plain boards carry Tasks; sealed boards
// carry Version, Salt and Sealed, where Sealed decrypts to a plain payload.
type payload struct {
	Tasks   []model.Task `json:"tasks,omitempty"`
	Version int          `json:"version,omitempty"`
	Salt    string       `json:"salt,omitempty"`
	Sealed  string       `json:"sealed,omitempty"`
}

// Client reads and writes task collections through a Store
type Client struct {
	store      Store
	passphrase string

	mu     sync.Mutex
	crypto *Crypto
}

// NewClient creates a client over store. A non-empty passphrase seals every
// document it writes.
func NewClient(store Store, passphrase string) *Client {
	return &Client{store: store, passphrase: passphrase}
}

// New builds a client from configuration. It returns nil when no remote is
// configured, which callers treat as cloud off.
func New(ctx context.Context, cfg config.Remote) (*Client, error) {
	if !cfg.Enabled() {
		return nil, nil
	}

	switch cfg.Driver {
	case config.DriverPostgres:
		store, err := OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return NewClient(store, cfg.Passphrase), nil
	case config.DriverHTTP:
		return NewClient(NewHTTPStore(cfg.URL, cfg.APIKey, cfg.Timeout), cfg.Passphrase), nil
	default:
		return nil, fmt.Errorf("unknown remote driver %q", cfg.Driver)
	}
}

// Sealed reports whether documents are written encrypted
func (c *Client) Sealed() bool {
	return c.passphrase != ""
}

// Pull returns the tasks stored under key. A missing board yields no tasks.
func (c *Client) Pull(ctx context.Context, key string) ([]model.Task, error) {
	doc, err := c.store.Fetch(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c.decode(doc.Data)
}

// Push stores tasks under key, replacing the previous document
func (c *Client) Push(ctx context.Context, key string, tasks []model.Task) error {
	data, err := c.encode(tasks)
	if err != nil {
		return err
	}
	_, err = c.store.Upsert(ctx, key, data)
	return err
}

// Clear removes the board stored under key
func (c *Client) Clear(ctx context.Context, key string) error {
	return c.store.Delete(ctx, key)
}

// Ping checks that the remote is reachable
func (c *Client) Ping(ctx context.Context) error {
	return c.store.Ping(ctx)
}

// Close releases the underlying store
func (c *Client) Close() error {
	if closer, ok := c.store.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (c *Client) encode(tasks []model.Task) (json.RawMessage, error) {
	if tasks == nil {
		tasks = []model.Task{}
	}
	plain, err := json.Marshal(struct {
		Tasks []model.Task `json:"tasks"`
	}{tasks})
	if err != nil {
		return nil, err
	}
	if !c.Sealed() {
		return plain, nil
	}

	cr, err := c.sealer()
	if err != nil {
		return nil, err
	}
	sealed, err := cr.Encrypt(plain)
	if err != nil {
		return nil, fmt.Errorf("failed to seal board: %w", err)
	}
	return json.Marshal(payload{Version: envelopeVersion, Salt: cr.Salt(), Sealed: sealed})
}

func (c *Client) decode(data json.RawMessage) ([]model.Task, error) {
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("unreadable remote board: %w", err)
	}
	if p.Sealed == "" {
		return p.Tasks, nil
	}
	if !c.Sealed() {
		return nil, ErrSealed
	}

	salt, err := base64.StdEncoding.DecodeString(p.Salt)
	if err != nil {
		return nil, fmt.Errorf("unreadable remote board salt: %w", err)
	}
	plain, err := c.opener(salt).Decrypt(p.Sealed)
	if err != nil {
		return nil, err
	}

	var inner payload
	if err := json.Unmarshal(plain, &inner); err != nil {
		return nil, fmt.Errorf("unreadable remote board: %w", err)
	}
	return inner.Tasks, nil
}

// sealer returns the cached key, deriving one with a fresh salt on first use
func (c *Client) sealer() (*Crypto, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.crypto != nil {
		return c.crypto, nil
	}
	salt, err := GenerateSalt()
	if err != nil {
		return nil, err
	}
	c.crypto = NewCrypto(c.passphrase, salt)
	return c.crypto, nil
}

// opener returns a key for salt, adopting it for later writes
func (c *Client) opener(salt []byte) *Crypto {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.crypto == nil || c.crypto.Salt() != base64.StdEncoding.EncodeToString(salt) {
		c.crypto = NewCrypto(c.passphrase, salt)
	}
	return c.crypto
}
