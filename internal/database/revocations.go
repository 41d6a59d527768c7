package database

import "time"

// Token revocation lives in the same database as users so that logout and
// registration share one consistency domain. Rows are keyed by the token's
// JTI and carry the token's own expiry, so an entry never needs to outlive
// the token it shadows.

// RevokeToken records a token as revoked. Revoking the same token twice is
// a no-op.
func (s *Store) RevokeToken(jti string, userID int64, expiresAt time.Time) error {
	_, err := s.db.Exec(s.rebind(
		`INSERT INTO revoked_tokens (jti, user_id, expires_at, revoked_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (jti) DO NOTHING`),
		jti, userID, expiresAt, time.Now(),
	)
	return err
}

// IsTokenRevoked reports whether a token's JTI is in the revocation set
func (s *Store) IsTokenRevoked(jti string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(s.rebind(
		`SELECT EXISTS(SELECT 1 FROM revoked_tokens WHERE jti = ?)`), jti).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// CleanupExpiredRevocations prunes entries whose token has passed its
// natural expiry. Validation rejects expired tokens before the revocation
// lookup, so pruning only bounds table growth.
func (s *Store) CleanupExpiredRevocations() error {
	_, err := s.db.Exec(s.rebind(`DELETE FROM revoked_tokens WHERE expires_at < ?`), time.Now())
	return err
}
