// Package repotest provides an in-memory repository.UserRepository for tests.
package repotest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/studentversedubai-rgb/website-backend/internal/domain"
	"github.com/studentversedubai-rgb/website-backend/internal/repository"
)

var _ repository.UserRepository = (*Users)(nil)

// Users mirrors the uniqueness rules of the postgres schema: email,
// referral_code and referral_events.referred_id are unique.
type Users struct {
	mu     sync.Mutex
	byID   map[string]*domain.WaitlistUser
	events []domain.ReferralEvent
	seq    int64

	// Now stamps created_at. Tests set it to force timestamp ties.
	Now func() time.Time

	// Err, when set, is returned by every method.
	Err error

	// BeforeInsert runs ahead of InsertVerified's uniqueness checks. A
	// non-nil result is returned instead of inserting.
	BeforeInsert func(email, referralCode string) error

	// BeforeCredit runs once the event is known to be new, ahead of any
	// write. A non-nil result fails the credit with nothing recorded.
	BeforeCredit func(referrerID, referredID string) error
}

func NewUsers() *Users {
	return &Users{
		byID: make(map[string]*domain.WaitlistUser),
		Now:  time.Now,
	}
}

func (r *Users) Add(email, referralCode string, verified bool) *domain.WaitlistUser {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.insertLocked(email, referralCode, verified)
}

func (r *Users) insertLocked(email, referralCode string, verified bool) *domain.WaitlistUser {
	r.seq++
	u := &domain.WaitlistUser{
		ID:           fmt.Sprintf("user-%d", r.seq),
		Email:        email,
		ReferralCode: referralCode,
		IsVerified:   verified,
		RewardStatus: domain.RewardLocked,
		SignupSeq:    r.seq,
		CreatedAt:    r.Now(),
	}
	r.byID[u.ID] = u
	return u
}

func (r *Users) Events() []domain.ReferralEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.ReferralEvent, len(r.events))
	copy(out, r.events)
	return out
}

func (r *Users) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

func (r *Users) find(match func(*domain.WaitlistUser) bool) (*domain.WaitlistUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	for _, u := range r.byID {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *Users) FindByEmail(_ context.Context, email string) (*domain.WaitlistUser, error) {
	return r.find(func(u *domain.WaitlistUser) bool { return u.Email == email })
}

func (r *Users) FindByID(_ context.Context, id string) (*domain.WaitlistUser, error) {
	return r.find(func(u *domain.WaitlistUser) bool { return u.ID == id })
}

func (r *Users) FindByReferralCode(_ context.Context, code string) (*domain.WaitlistUser, error) {
	return r.find(func(u *domain.WaitlistUser) bool { return u.ReferralCode == code })
}

func (r *Users) InsertVerified(_ context.Context, email, referralCode string) (*domain.WaitlistUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	if r.BeforeInsert != nil {
		if err := r.BeforeInsert(email, referralCode); err != nil {
			return nil, err
		}
	}
	for _, u := range r.byID {
		if u.Email == email {
			return nil, domain.ErrEmailTaken
		}
		if u.ReferralCode == referralCode {
			return nil, domain.ErrReferralCodeTaken
		}
	}
	cp := *r.insertLocked(email, referralCode, true)
	return &cp, nil
}

func (r *Users) MarkVerified(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	u, ok := r.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.IsVerified = true
	return nil
}

// CreditReferral follows WaitlistUserRepository.CreditReferral: nothing is
// written unless the event and the increment both succeed.
func (r *Users) CreditReferral(_ context.Context, referrerID, referredID string, unlockThreshold int) (*domain.WaitlistUser, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, false, r.Err
	}
	for _, e := range r.events {
		if e.ReferredID == referredID {
			return nil, false, domain.ErrAlreadyReferred
		}
	}
	u, ok := r.byID[referrerID]
	if !ok {
		return nil, false, domain.ErrUserNotFound
	}
	if r.BeforeCredit != nil {
		if err := r.BeforeCredit(referrerID, referredID); err != nil {
			return nil, false, err
		}
	}

	r.events = append(r.events, domain.ReferralEvent{
		ID:         fmt.Sprintf("event-%d", len(r.events)+1),
		ReferrerID: referrerID,
		ReferredID: referredID,
		CreatedAt:  r.Now(),
	})
	u.ReferralCount++
	unlocked := false
	if u.RewardStatus == domain.RewardLocked && u.ReferralCount >= unlockThreshold {
		u.RewardStatus = domain.RewardUnlocked
		unlocked = true
	}
	cp := *u
	return &cp, unlocked, nil
}

func (r *Users) CountCreatedBefore(_ context.Context, createdAt time.Time, seq int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return 0, r.Err
	}
	n := 0
	for _, u := range r.byID {
		if u.CreatedAt.Before(createdAt) || (u.CreatedAt.Equal(createdAt) && u.SignupSeq < seq) {
			n++
		}
	}
	return n, nil
}

func (r *Users) Stats(_ context.Context) (domain.WaitlistStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return domain.WaitlistStats{}, r.Err
	}
	var s domain.WaitlistStats
	for _, u := range r.byID {
		s.Total++
		if u.IsVerified {
			s.Verified++
		}
		if u.RewardStatus == domain.RewardUnlocked {
			s.Unlocked++
		}
	}
	return s, nil
}
