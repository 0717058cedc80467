package dbclient

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/marmos91/dbrt/internal/dispatch"
	"github.com/marmos91/dbrt/internal/wire"
)

// sessionClaims is the payload signed into a session key so the server can
// verify a reconnecting client presented the key it was issued, rather than
// a guessed session id.
type sessionClaims struct {
	jwt.RegisteredClaims
	User    string `json:"user"`
	Host    string `json:"host"`
	Program string `json:"program"`
}

// CSessionFindOrCreateSession sends the connection's current (possibly
// empty) session id and key; if the server doesn't recognise it, it
// allocates a new session and returns its id/key, which the Connection then
// remembers for subsequent calls and reconnects.
func (c *Connection) CSessionFindOrCreateSession(ctx context.Context, signingKey []byte, user, host, program string) (string, error) {
	w := wire.NewWriter(256)
	if err := w.PackStringLengthPrefixed(c.sessionID); err != nil {
		return "", err
	}
	if err := w.PackStringLengthPrefixed(c.sessionKey); err != nil {
		return "", err
	}
	if err := w.PackStringLengthPrefixed(user); err != nil {
		return "", err
	}
	if err := w.PackStringLengthPrefixed(host); err != nil {
		return "", err
	}
	if err := w.PackStringLengthPrefixed(program); err != nil {
		return "", err
	}

	pkt, err := c.dispatcher.Dispatch(ctx, dispatch.OpSessionFindOrCreate, [][]byte{w.Bytes()})
	if err != nil {
		return "", err
	}
	if pkt.Header.RC != 0 {
		return "", rcError("csession_find_or_create_session", pkt.Header.RC)
	}

	buf, err := pkt.GetBuffer(0, -1, false)
	if err != nil {
		return "", err
	}
	r := wire.NewReader(buf)
	id, err := r.UnpackStringLengthPrefixed()
	if err != nil {
		return "", err
	}

	if id == "" {
		id = uuid.NewString()
		key, err := signSessionKey(signingKey, id, user, host, program)
		if err != nil {
			return "", err
		}
		c.sessionID, c.sessionKey = id, key
	} else {
		key, err := r.UnpackStringLengthPrefixed()
		if err != nil {
			return "", err
		}
		c.sessionID, c.sessionKey = id, key
	}

	return c.sessionID, nil
}

// CSessionEndSession tears down the connection's session on the server.
func (c *Connection) CSessionEndSession(ctx context.Context) error {
	if c.sessionID == "" {
		return nil
	}
	w := wire.NewWriter(64)
	if err := w.PackStringLengthPrefixed(c.sessionID); err != nil {
		return err
	}
	pkt, err := c.dispatcher.Dispatch(ctx, dispatch.OpSessionEnd, [][]byte{w.Bytes()})
	if err != nil {
		return err
	}
	if pkt.Header.RC != 0 {
		return rcError("csession_end_session", pkt.Header.RC)
	}
	c.sessionID, c.sessionKey = "", ""
	return nil
}

func signSessionKey(signingKey []byte, sessionID, user, host, program string) (string, error) {
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		},
		User:    user,
		Host:    host,
		Program: program,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(signingKey)
	if err != nil {
		return "", fmt.Errorf("dbclient: sign session key: %w", err)
	}
	return signed, nil
}

// VerifySessionKey checks a session key presented on reconnect against
// signingKey, returning the claims if valid.
func VerifySessionKey(signingKey []byte, key string) (*sessionClaims, error) {
	token, err := jwt.ParseWithClaims(key, &sessionClaims{}, func(t *jwt.Token) (any, error) {
		return signingKey, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("dbclient: invalid session key: %w", err)
	}
	claims, ok := token.Claims.(*sessionClaims)
	if !ok {
		return nil, fmt.Errorf("dbclient: unexpected session key claims type")
	}
	return claims, nil
}
