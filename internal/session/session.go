// Package session владеет единственным Cart Store активной сессии и токеном доступа.
package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/sweetcart/internal/cart"
	"github.com/vladislavdragonenkov/sweetcart/internal/domain"
	"github.com/vladislavdragonenkov/sweetcart/internal/metrics"
	"github.com/vladislavdragonenkov/sweetcart/internal/persistence"
)

// TokenKey — ключ, под которым в KV хранится bearer-токен.
const TokenKey = "authToken"

// Options настраивает сессию.
type Options struct {
	CartKey string
	Logger  *log.Entry
	Metrics *metrics.CartMetrics
}

// Session — сессия покупателя: корзина плюс токен авторизации.
type Session struct {
	kv     domain.KVStore
	store  *cart.Store
	logger *log.Entry

	mu    sync.RWMutex
	token string
}

// Open создаёт корзину поверх kv и гидрирует её из хранилища.
// Сохранённый токен подхватывается, если он есть.
func Open(kv domain.KVStore, opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = log.WithField("component", "session")
	}

	adapter := persistence.NewAdapter(
		kv,
		logger.WithField("component", "cart-persistence"),
		persistence.WithKey(opts.CartKey),
		persistence.WithMetrics(opts.Metrics),
	)
	store := cart.NewStore(adapter, logger.WithField("component", "cart-store"), opts.Metrics)
	store.Load()

	s := &Session{kv: kv, store: store, logger: logger}

	raw, err := kv.Get(TokenKey)
	switch {
	case err == nil:
		s.token = string(raw)
	case !errors.Is(err, domain.ErrKeyNotFound):
		logger.WithError(err).Warn("failed to load auth token")
	}

	return s
}

// Cart возвращает хранилище корзины сессии.
func (s *Session) Cart() *cart.Store {
	return s.store
}

// Token возвращает текущий bearer-токен или пустую строку.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Authenticated сообщает, есть ли у сессии токен.
func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

// SetToken сохраняет токен. Пустой токен равносилен удалению.
func (s *Session) SetToken(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return s.dropToken()
	}

	if err := s.kv.Set(TokenKey, []byte(token)); err != nil {
		return fmt.Errorf("save auth token: %w", err)
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return nil
}

// ClearToken забывает токен, например после ответа 401.
func (s *Session) ClearToken() error {
	return s.dropToken()
}

// Logout очищает корзину и удаляет токен.
func (s *Session) Logout() error {
	s.store.Clear()
	if err := s.dropToken(); err != nil {
		return err
	}
	s.logger.Info("session closed")
	return nil
}

func (s *Session) dropToken() error {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()

	if err := s.kv.Delete(TokenKey); err != nil {
		return fmt.Errorf("delete auth token: %w", err)
	}
	return nil
}
