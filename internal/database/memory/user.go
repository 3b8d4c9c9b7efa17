package memory

import (
	"context"
	"strings"
	"time"

	"github.com/ds124wfegd/eventhub/internal/entity"
)

type userRepository struct{ s *Store }

func copyUser(u *entity.User) *entity.User {
	c := *u
	if u.DateOfBirth != nil {
		dob := *u.DateOfBirth
		c.DateOfBirth = &dob
	}
	return &c
}

func (r *userRepository) Create(_ context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	user.Email = strings.ToLower(user.Email)
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return entity.ErrEmailTaken
		}
		if (user.GoogleID != "" && u.GoogleID == user.GoogleID) ||
			(user.FacebookID != "" && u.FacebookID == user.FacebookID) {
			return entity.ErrSocialIDTaken
		}
	}

	if user.LoginStatus == "" {
		user.LoginStatus = entity.LoginStatusLoggedOut
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	user.UpdatedAt = user.CreatedAt
	user.ID = r.s.id()
	r.s.users[user.ID] = copyUser(user)
	return nil
}

func (r *userRepository) find(match func(*entity.User) bool) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if match(u) {
			return copyUser(u), nil
		}
	}
	return nil, entity.ErrUserNotFound
}

func (r *userRepository) GetByID(_ context.Context, id int64) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return u.ID == id })
}

func (r *userRepository) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.find(func(u *entity.User) bool { return u.Email == email })
}

func (r *userRepository) GetVerifiedByID(_ context.Context, id int64) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return u.ID == id && u.Verified })
}

func (r *userRepository) GetVerifiedByEmail(_ context.Context, email string) (*entity.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.find(func(u *entity.User) bool { return u.Email == email && u.Verified })
}

func (r *userRepository) GetBySocialID(_ context.Context, provider entity.SocialProvider, socialID string) (*entity.User, error) {
	if provider != entity.ProviderGoogle && provider != entity.ProviderFacebook {
		return nil, entity.ErrUnknownProvider
	}
	return r.find(func(u *entity.User) bool {
		return socialID != "" && u.SocialID(provider) == socialID
	})
}

func (r *userRepository) Update(_ context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.users[user.ID]
	if !ok {
		return entity.ErrUserNotFound
	}
	stored.Name = user.Name
	stored.DateOfBirth = user.DateOfBirth
	stored.Verified = user.Verified
	stored.LoginStatus = user.LoginStatus
	stored.ProfileImageURL = user.ProfileImageURL
	stored.PhoneNumber = user.PhoneNumber
	stored.UpdatedAt = time.Now()
	user.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *userRepository) UpdateLoginStatus(_ context.Context, id int64, status entity.LoginStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.users[id]
	if !ok {
		return entity.ErrUserNotFound
	}
	stored.LoginStatus = status
	stored.UpdatedAt = time.Now()
	return nil
}

func (r *userRepository) UpdatePassword(_ context.Context, id int64, passwordHash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.users[id]
	if !ok {
		return entity.ErrUserNotFound
	}
	stored.PasswordHash = passwordHash
	stored.UpdatedAt = time.Now()
	return nil
}

func (r *userRepository) LinkSocial(_ context.Context, id int64, provider entity.SocialProvider, socialID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.users[id]
	if !ok {
		return entity.ErrUserNotFound
	}

	switch provider {
	case entity.ProviderGoogle:
		if stored.GoogleID != "" {
			return entity.ErrGoogleLinked
		}
	case entity.ProviderFacebook:
		if stored.FacebookID != "" {
			return entity.ErrFacebookLinked
		}
	default:
		return entity.ErrUnknownProvider
	}

	for _, u := range r.s.users {
		if u.ID != id && u.SocialID(provider) == socialID {
			return entity.ErrSocialIDTaken
		}
	}

	if provider == entity.ProviderGoogle {
		stored.GoogleID = socialID
	} else {
		stored.FacebookID = socialID
	}
	stored.UpdatedAt = time.Now()
	return nil
}
