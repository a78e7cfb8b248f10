package clauth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/andskur/argon2-hashing"
	"github.com/golang-jwt/jwt/v5"
	"github.com/wasiahamad/Portfolio/internal/models/clconfig"
)

const (
	issuer       = "portfolio"
	minPassLen   = 8
	adminSubject = "admin"
)

var (
	ErrInvalidCredentials = errors.New("identifiants incorrects")
	ErrInvalidToken       = errors.New("token invalide")
	ErrPasswordTooShort   = fmt.Errorf("le mot de passe doit contenir au moins %d caractères", minPassLen)
)

type Admin struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Authenticator vérifie l'administrateur de la configuration et signe les tokens HS256
type Authenticator struct {
	login  string
	name   string
	hash   []byte
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func New(user clconfig.UserConfig, auth clconfig.AuthConfig) *Authenticator {
	ttl := time.Duration(auth.TTLHours) * time.Hour
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Authenticator{
		login:  strings.TrimSpace(user.Login),
		name:   user.Name,
		hash:   []byte(user.Hash),
		secret: []byte(auth.JWTSecret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// HashPassword calcule le hash argon2 stocké dans user.hash
func HashPassword(pass string) (string, error) {
	if len(pass) < minPassLen {
		return "", ErrPasswordTooShort
	}
	hash, err := argon2.GenerateFromPassword([]byte(pass), argon2.DefaultParams)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (a *Authenticator) Admin() Admin {
	name := a.name
	if name == "" {
		name = a.login
	}
	return Admin{Email: a.login, Name: name}
}

// Login vérifie les identifiants et retourne un token signé
func (a *Authenticator) Login(login, password string) (string, error) {
	if len(a.hash) == 0 || login == "" || password == "" {
		return "", ErrInvalidCredentials
	}
	if !strings.EqualFold(strings.TrimSpace(login), a.login) {
		return "", ErrInvalidCredentials
	}
	if err := argon2.CompareHashAndPassword(a.hash, []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return a.IssueToken(adminSubject)
}

func (a *Authenticator) IssueToken(subject string) (string, error) {
	now := a.now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("signature token: %w", err)
	}
	return token, nil
}

func (a *Authenticator) ParseToken(tokenString string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}

// GenerateSecret produit une clé aléatoire quand auth.jwtsecret n'est pas configuré
func GenerateSecret() (string, error) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return "", fmt.Errorf("génération clé secrète: %w", err)
	}
	return hex.EncodeToString(key), nil
}
