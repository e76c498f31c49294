package usecase

import (
	"errors"
	"fmt"

	"github.com/SparshM8/Farm-Technology/internal/domain"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// AdminAuthUseCase checks the single shared admin password.
type AdminAuthUseCase interface {
	Authenticate(password string) error
}

type adminAuthUseCase struct {
	passwordHash []byte
	log          *logrus.Logger
}

// NewAdminAuthUseCase prefers a precomputed bcrypt hash and otherwise hashes
// the plain password once at startup.
func NewAdminAuthUseCase(passwordHash, password string, logger *logrus.Logger) (AdminAuthUseCase, error) {
	if passwordHash != "" {
		if _, err := bcrypt.Cost([]byte(passwordHash)); err != nil {
			return nil, fmt.Errorf("ADMIN_PASSWORD_HASH is not a bcrypt hash: %w", err)
		}
		return &adminAuthUseCase{passwordHash: []byte(passwordHash), log: logger}, nil
	}
	if password == "" {
		return nil, errors.New("either ADMIN_PASSWORD_HASH or ADMIN_PASSWORD must be set")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("internal error processing admin password: %w", err)
	}
	logger.Warn("Use Case: Admin password hash derived from ADMIN_PASSWORD; prefer ADMIN_PASSWORD_HASH in production")
	return &adminAuthUseCase{passwordHash: hashed, log: logger}, nil
}

func (uc *adminAuthUseCase) Authenticate(password string) error {
	if password == "" {
		return fmt.Errorf("%w: password required", domain.ErrUnauthorized)
	}
	err := bcrypt.CompareHashAndPassword(uc.passwordHash, []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			uc.log.Warn("Use Case: Admin login failed - incorrect password")
			return fmt.Errorf("%w: invalid password", domain.ErrUnauthorized)
		}
		uc.log.Errorf("Use Case: Error comparing admin password hash: %v", err)
		return fmt.Errorf("internal error during authentication: %w", err)
	}
	uc.log.Info("Use Case: Admin authenticated")
	return nil
}
