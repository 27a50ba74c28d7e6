package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	domain "github.com/kitzone/api/internal/domain"
	pfirestore "github.com/kitzone/api/internal/platform/firestore"
	"github.com/kitzone/api/internal/repositories"
)

type profileDocument struct {
	Email     string    `firestore:"email,omitempty"`
	FullName  string    `firestore:"fullName,omitempty"`
	Role      string    `firestore:"role"`
	CreatedAt time.Time `firestore:"createdAt"`
}

// ProfileRepository stores account profiles keyed by the identity provider UID.
type ProfileRepository struct {
	base *pfirestore.BaseRepository[profileDocument]
}

var _ repositories.ProfileRepository = (*ProfileRepository)(nil)

// NewProfileRepository constructs a Firestore-backed profile repository.
func NewProfileRepository(provider *pfirestore.Provider) (*ProfileRepository, error) {
	if provider == nil {
		return nil, errors.New("profile repository requires firestore provider")
	}
	return &ProfileRepository{
		base: pfirestore.NewBaseRepository[profileDocument](provider, profilesCollection, nil, nil),
	}, nil
}

// FindByUID fetches the profile stored for the given UID.
func (r *ProfileRepository) FindByUID(ctx context.Context, uid string) (domain.Profile, error) {
	doc, err := r.base.Get(ctx, uid)
	if err != nil {
		return domain.Profile{}, err
	}
	return domain.Profile{
		UID:       doc.ID,
		Email:     doc.Data.Email,
		FullName:  doc.Data.FullName,
		Role:      doc.Data.Role,
		CreatedAt: doc.Data.CreatedAt,
	}, nil
}

// Upsert writes the profile, defaulting the role to "user" when unset.
func (r *ProfileRepository) Upsert(ctx context.Context, profile domain.Profile) (domain.Profile, error) {
	if strings.TrimSpace(profile.UID) == "" {
		return domain.Profile{}, errors.New("profile repository: uid is required")
	}
	if strings.TrimSpace(profile.Role) == "" {
		profile.Role = "user"
	}
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = time.Now().UTC()
	}
	doc := profileDocument{
		Email:     profile.Email,
		FullName:  profile.FullName,
		Role:      profile.Role,
		CreatedAt: profile.CreatedAt.UTC(),
	}
	if err := r.base.Set(ctx, profile.UID, doc); err != nil {
		return domain.Profile{}, err
	}
	return profile, nil
}
