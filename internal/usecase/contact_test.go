package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/studentversedubai-rgb/website-backend/internal/domain"
	"github.com/studentversedubai-rgb/website-backend/internal/ratelimit"
	"github.com/studentversedubai-rgb/website-backend/internal/repository/repotest"
	"github.com/studentversedubai-rgb/website-backend/internal/usecase"
)

type fakeContactRepo struct {
	create func(ctx context.Context, msg *domain.ContactMessage) (*domain.ContactMessage, error)
}

func (r *fakeContactRepo) Create(ctx context.Context, msg *domain.ContactMessage) (*domain.ContactMessage, error) {
	return r.create(ctx, msg)
}

func newContact(t *testing.T, repo *fakeContactRepo, max int) *usecase.ContactUsecase {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return usecase.NewContactUsecase(ratelimit.New(client), repo, time.Minute, max, discard)
}

func TestContactSubmit_StoresTrimmedMessage(t *testing.T) {
	var stored *domain.ContactMessage
	repo := &fakeContactRepo{create: func(_ context.Context, msg *domain.ContactMessage) (*domain.ContactMessage, error) {
		stored = msg
		cp := *msg
		cp.ID = "msg-1"
		return &cp, nil
	}}
	uc := newContact(t, repo, 5)

	msg, err := uc.Submit(context.Background(), usecase.ContactInput{
		FirstName:   " Ada ",
		LastName:    "Lovelace",
		Email:       "Ada@Example.com",
		Message:     " hello ",
		InquiryType: domain.InquiryStudentSupport,
		ClientIP:    testIP,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.ID != "msg-1" {
		t.Errorf("id = %q", msg.ID)
	}
	if stored.FirstName != "Ada" || stored.Email != "ada@example.com" || stored.Message != "hello" {
		t.Errorf("stored = %+v", stored)
	}
}

func TestContactSubmit_RateLimited(t *testing.T) {
	calls := 0
	repo := &fakeContactRepo{create: func(_ context.Context, msg *domain.ContactMessage) (*domain.ContactMessage, error) {
		calls++
		return msg, nil
	}}
	uc := newContact(t, repo, 2)
	in := usecase.ContactInput{FirstName: "a", LastName: "b", Email: "a@x.com", Message: "m", InquiryType: domain.InquiryMerchantBusiness, ClientIP: testIP}

	for i := 0; i < 2; i++ {
		if _, err := uc.Submit(context.Background(), in); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}
	if _, err := uc.Submit(context.Background(), in); !errors.Is(err, domain.ErrRateLimited) {
		t.Errorf("expected ErrRateLimited, got %v", err)
	}
	if calls != 2 {
		t.Errorf("repo calls = %d, want 2", calls)
	}
}

func TestContactSubmit_StoreError(t *testing.T) {
	repo := &fakeContactRepo{create: func(context.Context, *domain.ContactMessage) (*domain.ContactMessage, error) {
		return nil, errors.New("db down")
	}}
	uc := newContact(t, repo, 5)

	_, err := uc.Submit(context.Background(), usecase.ContactInput{Email: "a@x.com", ClientIP: testIP})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestStats_Counts(t *testing.T) {
	users := repotest.NewUsers()
	users.Add("a@x.com", "AAAAAAAA", true)
	users.Add("b@x.com", "BBBBBBBB", false)

	uc := usecase.NewStatsUsecase(users)
	s, err := uc.Stats(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if s.Total != 2 || s.Verified != 1 || s.Unlocked != 0 {
		t.Errorf("stats = %+v", s)
	}
	if err := uc.Refresh(context.Background()); err != nil {
		t.Errorf("refresh: %v", err)
	}
}
