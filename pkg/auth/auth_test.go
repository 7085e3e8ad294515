package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/require"

	"github.com/MadiBrom/ClassShelf/internal/model"
	"github.com/MadiBrom/ClassShelf/pkg/auth"
)

func TestManager_SignParse(t *testing.T) {
	t.Parallel()
	mgr := auth.NewManager(auth.Config{JWTKey: "test-key", TTL: time.Hour})

	token, err := mgr.Sign(7, 3, model.RoleStudent)
	require.NoError(t, err)

	claims, err := mgr.Parse(token)
	require.NoError(t, err)
	require.Equal(t, 7, claims.UserID)
	require.Equal(t, 3, claims.ClassID)
	require.Equal(t, model.RoleStudent, claims.Role)
}

func TestManager_ParseRejectsForeignAlgorithms(t *testing.T) {
	t.Parallel()
	mgr := auth.NewManager(auth.Config{JWTKey: "test-key", TTL: time.Hour})

	claims := &auth.Claims{
		UserID: 7, Role: model.RoleTeacher, ClassID: 7,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	t.Run("unsigned token", func(t *testing.T) {
		t.Parallel()
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = mgr.Parse(token)
		require.Error(t, err)
	})

	t.Run("hs384 with the right key", func(t *testing.T) {
		t.Parallel()
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS384, claims).
			SignedString([]byte("test-key"))
		require.NoError(t, err)
		_, err = mgr.Parse(token)
		require.Error(t, err)
	})
}

func TestManager_ParseRejectsBadTokens(t *testing.T) {
	t.Parallel()
	mgr := auth.NewManager(auth.Config{JWTKey: "test-key", TTL: time.Hour})

	t.Run("wrong key", func(t *testing.T) {
		t.Parallel()
		other := auth.NewManager(auth.Config{JWTKey: "other-key", TTL: time.Hour})
		token, err := other.Sign(7, 7, model.RoleTeacher)
		require.NoError(t, err)
		_, err = mgr.Parse(token)
		require.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		t.Parallel()
		expired := auth.NewManager(auth.Config{JWTKey: "test-key", TTL: -time.Minute})
		token, err := expired.Sign(7, 7, model.RoleTeacher)
		require.NoError(t, err)
		_, err = mgr.Parse(token)
		require.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		t.Parallel()
		_, err := mgr.Parse("not.a.token")
		require.Error(t, err)
	})
}
