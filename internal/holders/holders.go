// Package holders manages the certificate holders of an account.
package holders

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/certdesk/certdesk/internal/validation"
)

var ErrNotFound = errors.New("holder not found")

// Holder is the party a certificate is issued to.
type Holder struct {
	ID           string    `json:"id" bson:"_id"`
	AccountID    string    `json:"account_id" bson:"account_id"`
	Name         string    `json:"name" bson:"name" validate:"notblank,max=200"`
	AddressLine1 string    `json:"address_line1" bson:"address_line1"`
	AddressLine2 string    `json:"address_line2" bson:"address_line2"`
	City         string    `json:"city" bson:"city"`
	State        string    `json:"state" bson:"state" validate:"omitempty,usstate"`
	PostalCode   string    `json:"postal_code" bson:"postal_code"`
	Email        string    `json:"email" bson:"email" validate:"omitempty,simpleemail"`
	Phone        string    `json:"phone" bson:"phone"`
	Remarks      string    `json:"remarks" bson:"remarks"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}

// Roles returns the holder's values keyed by mapping role.
func (h *Holder) Roles() map[string]string {
	if h == nil {
		return map[string]string{}
	}
	return map[string]string{
		"name":          h.Name,
		"address_line1": h.AddressLine1,
		"address_line2": h.AddressLine2,
		"city":          h.City,
		"state":         h.State,
		"postal_code":   h.PostalCode,
		"email":         h.Email,
		"phone":         h.Phone,
		"remarks":       h.Remarks,
	}
}

func (h *Holder) normalize() {
	for _, p := range []*string{&h.Name, &h.AddressLine1, &h.AddressLine2, &h.City, &h.PostalCode, &h.Email, &h.Phone, &h.Remarks} {
		*p = strings.TrimSpace(*p)
	}
	h.State = strings.ToUpper(strings.TrimSpace(h.State))
}

// Service validates holders before they reach the repository.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates h and stores it under a new id. Nothing is written when
// validation fails; the error is then a validation.ValidationErrors.
func (s *Service) Create(ctx context.Context, accountID string, h Holder) (*Holder, error) {
	h.normalize()
	if err := validation.Struct(h); err != nil {
		return nil, err
	}
	h.ID = uuid.New().String()
	h.AccountID = accountID
	if err := s.repo.Create(ctx, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// Update replaces the editable fields of an existing holder.
func (s *Service) Update(ctx context.Context, accountID, id string, h Holder) (*Holder, error) {
	h.normalize()
	if err := validation.Struct(h); err != nil {
		return nil, err
	}
	cur, err := s.repo.Get(ctx, accountID, id)
	if err != nil {
		return nil, err
	}
	h.ID, h.AccountID, h.CreatedAt = cur.ID, cur.AccountID, cur.CreatedAt
	if err := s.repo.Update(ctx, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

func (s *Service) Get(ctx context.Context, accountID, id string) (*Holder, error) {
	return s.repo.Get(ctx, accountID, id)
}

func (s *Service) List(ctx context.Context, accountID string) ([]*Holder, error) {
	return s.repo.List(ctx, accountID)
}

func (s *Service) Delete(ctx context.Context, accountID, id string) error {
	return s.repo.Delete(ctx, accountID, id)
}
