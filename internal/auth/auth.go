package auth

import (
	"time"

	"drivequest/internal/domain"
	"go.uber.org/zap"
)

// DefaultDelay is how long a login attempt appears to take.
const DefaultDelay = time.Second

// CredentialChecker maps a username/password pair to a role.
type CredentialChecker interface {
	Check(username, password string) domain.Role
}

// Credential is one accepted login.
type Credential struct {
	Username string      `yaml:"username" validate:"required"`
	Password string      `yaml:"password" validate:"required"`
	Role     domain.Role `yaml:"role" validate:"oneof=student parent"`
}

// DefaultCredentials are the demo accounts.
var DefaultCredentials = []Credential{
	{Username: "TeenLogin", Password: "aa123", Role: domain.RoleStudent},
	{Username: "ParentLogin", Password: "aa1234", Role: domain.RoleParent},
}

// StaticCredentials checks against a fixed list; the first exact match wins.
type StaticCredentials struct {
	creds []Credential
}

func NewStaticCredentials(creds []Credential) *StaticCredentials {
	if len(creds) == 0 {
		creds = DefaultCredentials
	}
	return &StaticCredentials{creds: append([]Credential(nil), creds...)}
}

func (s *StaticCredentials) Check(username, password string) domain.Role {
	for _, c := range s.creds {
		if c.Username == username && c.Password == password {
			return c.Role
		}
	}
	return domain.RoleRejected
}

// Authenticator resolves login attempts after a fixed delay. There is no cancellation or
// retry; every attempt resolves exactly once.
type Authenticator struct {
	checker  CredentialChecker
	delay    time.Duration
	after    func(time.Duration, func())
	dispatch func(func()) bool
	logger   *zap.Logger
}

type Option func(*Authenticator)

// WithDispatcher delivers results through fn, typically EventLoop.Post.
func WithDispatcher(fn func(func()) bool) Option {
	return func(a *Authenticator) {
		if fn != nil {
			a.dispatch = fn
		}
	}
}

// WithTimer replaces time.AfterFunc.
func WithTimer(after func(time.Duration, func())) Option {
	return func(a *Authenticator) {
		if after != nil {
			a.after = after
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(a *Authenticator) {
		if logger != nil {
			a.logger = logger
		}
	}
}

func NewAuthenticator(checker CredentialChecker, delay time.Duration, opts ...Option) *Authenticator {
	if delay < 0 {
		delay = DefaultDelay
	}
	a := &Authenticator{
		checker:  checker,
		delay:    delay,
		after:    func(d time.Duration, fn func()) { time.AfterFunc(d, fn) },
		dispatch: func(fn func()) bool { fn(); return true },
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Login checks the credentials once the delay has elapsed and hands the role to done.
func (a *Authenticator) Login(username, password string, done func(domain.Role)) {
	a.after(a.delay, func() {
		role := a.checker.Check(username, password)
		a.logger.Info("login resolved", zap.String("username", username), zap.String("role", string(role)))
		if !a.dispatch(func() { done(role) }) {
			a.logger.Warn("login result dropped", zap.String("username", username))
		}
	})
}
