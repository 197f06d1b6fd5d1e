// Package users resolves tour owners. It never authenticates anyone; it only
// maps an owner email to an account, creating a placeholder when allowed.
package users

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"campusexplorer/errs"
	"campusexplorer/models"
	"campusexplorer/utils"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type Directory struct {
	store      Store
	autoCreate bool
	log        *zap.Logger
}

func NewDirectory(store Store, autoCreate bool, log *zap.Logger) *Directory {
	return &Directory{store: store, autoCreate: autoCreate, log: log}
}

// NormalizeEmail trims and lowercases an address and checks it has the
// local@domain shape.
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	at := strings.IndexByte(email, '@')
	if email == "" {
		return "", errs.Validation("ownerEmail", "is required")
	}
	if at <= 0 || at == len(email)-1 || strings.Count(email, "@") != 1 {
		return "", errs.Validation("ownerEmail", "must be a valid email address")
	}
	return email, nil
}

// Lookup returns the account for email or a NotFound error.
func (d *Directory) Lookup(ctx context.Context, email string) (models.User, error) {
	email, err := NormalizeEmail(email)
	if err != nil {
		return models.User{}, err
	}
	return d.store.FindByEmail(ctx, email)
}

// EnsureOwner returns the account for email. When none exists and
// auto-creation is on, a placeholder account is created: named after the
// local part, role user, with a password hash nobody knows.
func (d *Directory) EnsureOwner(ctx context.Context, email string) (models.User, error) {
	email, err := NormalizeEmail(email)
	if err != nil {
		return models.User{}, err
	}
	u, err := d.store.FindByEmail(ctx, email)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, errs.ErrNotFound) {
		return models.User{}, err
	}
	if !d.autoCreate {
		return models.User{}, errs.Validation("ownerEmail", "no account is registered for this email")
	}

	hash, err := unusablePasswordHash()
	if err != nil {
		return models.User{}, err
	}
	now := time.Now()
	u = models.User{
		UserID:       utils.GetUUID(),
		Name:         email[:strings.IndexByte(email, '@')],
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleUser,
		Placeholder:  true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := d.store.Insert(ctx, u); err != nil {
		if errors.Is(err, errEmailTaken) {
			return d.store.FindByEmail(ctx, email)
		}
		return models.User{}, err
	}

	d.log.Info("placeholder owner created", zap.String("email", email), zap.String("userid", u.UserID))
	return u, nil
}

func unusablePasswordHash() (string, error) {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return "", fmt.Errorf("generate placeholder secret: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(hex.EncodeToString(secret)), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash placeholder secret: %w", err)
	}
	return string(hash), nil
}
