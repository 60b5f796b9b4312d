package storage

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/md-rashed-zaman/storelink/libs/db"
)

var ErrNotFound = errors.New("onboarding data not found")

type OnboardingData struct {
	Shop          string    `json:"shop"`
	BusinessName  string    `json:"businessName"`
	ContactEmail  string    `json:"contactEmail"`
	Industry      string    `json:"industry"`
	AcceptedTerms bool      `json:"acceptedTerms"`
	IsComplete    bool      `json:"isComplete"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type OnboardingInput struct {
	BusinessName  string
	ContactEmail  string
	Industry      string
	AcceptedTerms bool
}

type Repository struct {
	pool *db.Pool
}

func NewRepository(pool *db.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Get(ctx context.Context, shop string) (OnboardingData, error) {
	var d OnboardingData
	err := r.pool.QueryRow(ctx, `
		SELECT shop, business_name, contact_email, industry, accepted_terms, is_complete, created_at, updated_at
		FROM onboarding_data
		WHERE shop = $1
	`, normalizeShop(shop)).Scan(&d.Shop, &d.BusinessName, &d.ContactEmail, &d.Industry, &d.AcceptedTerms, &d.IsComplete, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return OnboardingData{}, ErrNotFound
	}
	if err != nil {
		return OnboardingData{}, err
	}
	return d, nil
}

// Save upserts the shop's record and marks onboarding complete.
func (r *Repository) Save(ctx context.Context, shop string, in OnboardingInput) (OnboardingData, error) {
	var d OnboardingData
	err := r.pool.QueryRow(ctx, `
		INSERT INTO onboarding_data (shop, business_name, contact_email, industry, accepted_terms, is_complete)
		VALUES ($1, $2, $3, $4, $5, true)
		ON CONFLICT (shop)
		DO UPDATE SET business_name = EXCLUDED.business_name,
		              contact_email = EXCLUDED.contact_email,
		              industry = EXCLUDED.industry,
		              accepted_terms = EXCLUDED.accepted_terms,
		              is_complete = true,
		              updated_at = now()
		RETURNING shop, business_name, contact_email, industry, accepted_terms, is_complete, created_at, updated_at
	`, normalizeShop(shop), strings.TrimSpace(in.BusinessName), strings.TrimSpace(in.ContactEmail), strings.TrimSpace(in.Industry), in.AcceptedTerms,
	).Scan(&d.Shop, &d.BusinessName, &d.ContactEmail, &d.Industry, &d.AcceptedTerms, &d.IsComplete, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return OnboardingData{}, err
	}
	return d, nil
}

func (r *Repository) IsComplete(ctx context.Context, shop string) (bool, error) {
	d, err := r.Get(ctx, shop)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return d.IsComplete, nil
}

// Delete removes the shop's record inside tx. Deleting a missing shop is not an error.
func (r *Repository) Delete(ctx context.Context, tx pgx.Tx, shop string) (bool, error) {
	tag, err := tx.Exec(ctx, `DELETE FROM onboarding_data WHERE shop = $1`, normalizeShop(shop))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func normalizeShop(shop string) string {
	return strings.ToLower(strings.TrimSpace(shop))
}
