package jwt

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	defaultKeySetTTL           = 10 * time.Minute
	defaultKeySetMaxStale      = 15 * time.Minute
	defaultKeySetFetchTimeout  = 5 * time.Second
	defaultKeySetRetryAttempts = 3
	defaultKeySetRetryBase     = 200 * time.Millisecond
	defaultKeySetRetryMax      = 2 * time.Second
)

var (
	ErrKeyNotFound   = errors.New("signing key not found")
	ErrNoUsableKeys  = errors.New("key set contains no usable keys")
	ErrKeySetFetch   = errors.New("key set fetch failed")
	errKidIsRequired = errors.New("kid is required")
)

type keyState int

const (
	keyMissing keyState = iota
	keyFresh
	keyStale
)

type (
	// KeySet caches the issuer's RSA signing keys by key id.
	KeySet struct {
		url          string
		httpClient   *http.Client
		logger       *zap.Logger
		ttl          time.Duration
		maxStale     time.Duration
		fetchTimeout time.Duration
		retryBase    time.Duration
		retryMax     time.Duration
		now          func() time.Time

		mu         sync.RWMutex
		keys       map[string]*rsa.PublicKey
		expiresAt  time.Time
		staleUntil time.Time

		group singleflight.Group
	}

	jwksDocument struct {
		Keys []jsonWebKey `json:"keys"`
	}

	jsonWebKey struct {
		Kty string `json:"kty"`
		Kid string `json:"kid"`
		Alg string `json:"alg"`
		Use string `json:"use"`
		N   string `json:"n"`
		E   string `json:"e"`
	}
)

func NewKeySet(url string, httpClient *http.Client, ttl time.Duration, logger *zap.Logger) *KeySet {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if ttl <= 0 {
		ttl = defaultKeySetTTL
	}
	return &KeySet{
		url:          url,
		httpClient:   httpClient,
		logger:       logger,
		ttl:          ttl,
		maxStale:     defaultKeySetMaxStale,
		fetchTimeout: defaultKeySetFetchTimeout,
		retryBase:    defaultKeySetRetryBase,
		retryMax:     defaultKeySetRetryMax,
		now:          time.Now,
		keys:         map[string]*rsa.PublicKey{},
	}
}

// Key returns the public key for kid. An unknown kid forces a refresh so that
// rotated keys are picked up; stale keys are served while a refresh runs.
func (k *KeySet) Key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	if kid == "" {
		return nil, errKidIsRequired
	}
	if key, state := k.lookup(kid, k.now()); state == keyFresh {
		return key, nil
	} else if state == keyStale {
		k.refreshAsync()
		return key, nil
	}
	if err := k.refresh(ctx); err != nil {
		return nil, err
	}
	if key, _ := k.lookup(kid, k.now()); key != nil {
		return key, nil
	}
	return nil, ErrKeyNotFound
}

func (k *KeySet) lookup(kid string, now time.Time) (*rsa.PublicKey, keyState) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	key, ok := k.keys[kid]
	if !ok {
		return nil, keyMissing
	}
	if now.Before(k.expiresAt) {
		return key, keyFresh
	}
	if !k.staleUntil.IsZero() && now.Before(k.staleUntil) {
		return key, keyStale
	}
	return nil, keyMissing
}

func (k *KeySet) refreshAsync() {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), k.fetchTimeout)
		defer cancel()
		if err := k.refresh(ctx); err != nil {
			k.logger.Warn("background key set refresh failed", zap.String("url", k.url), zap.Error(err))
		}
	}()
}

func (k *KeySet) refresh(ctx context.Context) error {
	ch := k.group.DoChan("refresh", func() (any, error) {
		// detached so one caller's cancellation does not fail the shared fetch
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), k.fetchTimeout)
		defer cancel()
		return nil, k.doRefresh(fetchCtx)
	})
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (k *KeySet) doRefresh(ctx context.Context) error {
	keys, err := k.fetchWithRetry(ctx)
	if err != nil {
		return err
	}
	now := k.now()
	k.mu.Lock()
	k.keys = keys
	k.expiresAt = now.Add(k.ttl)
	k.staleUntil = k.expiresAt.Add(k.maxStale)
	k.mu.Unlock()
	k.logger.Debug("key set refreshed", zap.String("url", k.url), zap.Int("keys", len(keys)))
	return nil
}

func (k *KeySet) fetchWithRetry(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	delay := k.retryBase
	var lastErr error
	for attempt := 0; attempt < defaultKeySetRetryAttempts; attempt++ {
		if attempt > 0 {
			if err := sleepWithContext(ctx, delay); err != nil {
				return nil, err
			}
			delay *= 2
			if delay > k.retryMax {
				delay = k.retryMax
			}
		}
		keys, err := k.fetchOnce(ctx)
		if err == nil {
			return keys, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	return nil, lastErr
}

func (k *KeySet) fetchOnce(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, k.url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := k.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", ErrKeySetFetch, resp.StatusCode)
	}

	var document jwksDocument
	if err := json.NewDecoder(resp.Body).Decode(&document); err != nil {
		return nil, err
	}
	keys := make(map[string]*rsa.PublicKey, len(document.Keys))
	for _, key := range document.Keys {
		if key.Kty != "RSA" || key.Kid == "" {
			continue
		}
		pub, err := rsaPublicKey(key)
		if err != nil {
			k.logger.Warn("skipping unusable signing key", zap.String("kid", key.Kid), zap.Error(err))
			continue
		}
		keys[key.Kid] = pub
	}
	if len(keys) == 0 {
		return nil, ErrNoUsableKeys
	}
	return keys, nil
}

func sleepWithContext(ctx context.Context, delay time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func rsaPublicKey(key jsonWebKey) (*rsa.PublicKey, error) {
	if key.N == "" || key.E == "" {
		return nil, errors.New("missing rsa params")
	}
	nBytes, err := base64.RawURLEncoding.DecodeString(key.N)
	if err != nil {
		return nil, err
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(key.E)
	if err != nil {
		return nil, err
	}
	n := new(big.Int).SetBytes(nBytes)
	e := new(big.Int).SetBytes(eBytes).Int64()
	if e <= 0 || e > int64(^uint32(0)>>1) {
		return nil, errors.New("invalid rsa exponent")
	}
	return &rsa.PublicKey{
		N: n,
		E: int(e),
	}, nil
}
