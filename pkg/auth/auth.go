package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/pkg/errors"

	"github.com/MadiBrom/ClassShelf/internal/model"
)

type Config struct {
	JWTKey string        `envconfig:"AUTH_JWT_KEY" default:"classshelf-dev-key"`
	TTL    time.Duration `envconfig:"AUTH_TTL" default:"24h"`
}

type Claims struct {
	UserID int        `json:"userId"`
	Role   model.Role `json:"role"`
	// ClassID is the scoping teacherId: a teacher's own id, or the class a
	// student belongs to.
	ClassID int `json:"classId"`
	jwt.RegisteredClaims
}

type Manager struct {
	key []byte
	ttl time.Duration
}

func NewManager(cfg Config) *Manager {
	return &Manager{key: []byte(cfg.JWTKey), ttl: cfg.TTL}
}

func (m *Manager) TTL() time.Duration { return m.ttl }

func (m *Manager) Sign(userID, classID int, role model.Role) (string, error) {
	claims := &Claims{
		UserID:  userID,
		Role:    role,
		ClassID: classID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.key)
}

func (m *Manager) Parse(tokenStr string) (*Claims, error) {
	claims := new(Claims)
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
		return m.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.ExpiresAt != nil && time.Now().After(claims.ExpiresAt.Time) {
		return nil, errors.New("token expired")
	}
	return claims, nil
}

type ctxKey struct{}

func SetAuthContext(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, ctxKey{}, claims)
}

func FromContext(ctx context.Context) (*Claims, error) {
	claims, ok := ctx.Value(ctxKey{}).(*Claims)
	if !ok || claims == nil {
		return nil, errors.New("no auth context")
	}
	return claims, nil
}
