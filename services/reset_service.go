// File: /services/reset_service.go
package services

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
)

var ErrTokenUsed = errors.New("reset token already used")

// ResetService issues password-reset tokens and enforces their single use.
type ResetService struct {
	tokens *TokenService
	ledger TokenLedger
	log    logrus.FieldLogger
}

func NewResetService(tokens *TokenService, ledger TokenLedger, log logrus.FieldLogger) *ResetService {
	return &ResetService{tokens: tokens, ledger: ledger, log: log}
}

func (s *ResetService) Issue(email string) (string, error) {
	return s.tokens.IssueReset(email)
}

// Verify returns the grant of a token that is signed, inside its window and
// not yet used. Ledger failures count as invalid.
func (s *ResetService) Verify(ctx context.Context, raw string) (ResetGrant, bool) {
	grant, ok := s.tokens.VerifyReset(raw)
	if !ok {
		return ResetGrant{}, false
	}
	used, err := s.ledger.IsUsed(ctx, grant.TokenID)
	if err != nil {
		s.log.WithError(err).Error("reset token ledger lookup failed")
		return ResetGrant{}, false
	}
	if used {
		return ResetGrant{}, false
	}
	return grant, true
}

// Consume burns the token; only the first caller succeeds. The entry
// outlives ExpiresAt by a second since a token is still valid at that instant.
func (s *ResetService) Consume(ctx context.Context, grant ResetGrant) error {
	first, err := s.ledger.MarkUsed(ctx, grant.TokenID, grant.ExpiresAt.Add(time.Second))
	if err != nil {
		return err
	}
	if !first {
		return ErrTokenUsed
	}
	return nil
}

// Release undoes Consume after the password change failed to commit.
func (s *ResetService) Release(ctx context.Context, grant ResetGrant) {
	if err := s.ledger.Release(ctx, grant.TokenID); err != nil {
		s.log.WithError(err).Error("failed to release reset token")
	}
}
