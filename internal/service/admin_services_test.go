package service

import (
	"context"
	"testing"

	"github.com/spec-kit/helper-marketplace/internal/auth"
	"github.com/spec-kit/helper-marketplace/internal/domain"
	"github.com/spec-kit/helper-marketplace/internal/repository"
	apperrors "github.com/spec-kit/helper-marketplace/pkg/util"
)

func newUserService(store repository.Store) *UserService {
	return NewUserService(UserDependencies{UserRepo: store.Users, Hasher: auth.NewPasswordHasher(4)})
}

func TestAddUserDerivesUsername(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc := newUserService(store)

	u, err := svc.AddUser(ctx, nil, AddUserInput{FullName: "Meera  Nair", Email: "Meera@Example.com", Phone: "9876543210", Password: "password1"})
	if err != nil {
		t.Fatalf("AddUser: %v", err)
	}
	if u.Username != "meera_nair" || u.Email != "meera@example.com" || u.Role != domain.RoleUser {
		t.Fatalf("user = %+v", u)
	}

	_, err = svc.AddUser(ctx, nil, AddUserInput{FullName: "Other", Email: "x@example.com", Phone: "9876543210", Password: "short"})
	de := requireCode(t, err, apperrors.CodeValidation)
	if de.Details["field"] != "password" {
		t.Fatalf("details = %v", de.Details)
	}
}

func TestUpdateUserEmailUniqueness(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc := newUserService(store)
	a := seedUser(t, store, domain.User{Username: "a", Email: "a@example.com"})
	seedUser(t, store, domain.User{Username: "b", Email: "b@example.com"})

	if _, err := svc.UpdateUser(ctx, nil, a.ID, UpdateUserInput{FullName: "A", Email: "a@example.com", Phone: "9876543210"}); err != nil {
		t.Fatalf("keeping own email: %v", err)
	}
	_, err := svc.UpdateUser(ctx, nil, a.ID, UpdateUserInput{FullName: "A", Email: "B@example.com", Phone: "9876543210"})
	requireCode(t, err, apperrors.CodeConflict)
}

func TestAdminSelfGuards(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc := newUserService(store)
	admin := seedUser(t, store, domain.User{Username: "root", Email: "root@example.com", Role: domain.RoleAdmin})
	other := seedUser(t, store, domain.User{Username: "asha", Email: "asha@example.com"})

	_, err := svc.RemoveAdmin(ctx, admin, admin.ID)
	requireCode(t, err, apperrors.CodeConflict)
	requireCode(t, svc.DeleteUser(ctx, admin, admin.ID), apperrors.CodeConflict)

	promoted, err := svc.MakeAdmin(ctx, admin, other.ID)
	if err != nil || promoted.Role != domain.RoleAdmin {
		t.Fatalf("MakeAdmin = %+v, %v", promoted, err)
	}
	demoted, err := svc.RemoveAdmin(ctx, admin, other.ID)
	if err != nil || demoted.Role != domain.RoleUser {
		t.Fatalf("RemoveAdmin = %+v, %v", demoted, err)
	}
	if err := svc.DeleteUser(ctx, admin, other.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	requireCode(t, svc.DeleteUser(ctx, admin, other.ID), apperrors.CodeNotFound)
}

func TestBlockAndUnblockUser(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc := newUserService(store)
	admin := seedUser(t, store, domain.User{Username: "root", Email: "root@example.com", Role: domain.RoleAdmin})
	other := seedUser(t, store, domain.User{Username: "asha", Email: "asha@example.com"})

	_, err := svc.BlockUser(ctx, admin, admin.ID)
	requireCode(t, err, apperrors.CodeConflict)
	_, err = svc.BlockUser(ctx, admin, "missing")
	requireCode(t, err, apperrors.CodeNotFound)

	blocked, err := svc.BlockUser(ctx, admin, other.ID)
	if err != nil || !blocked.IsBlocked() {
		t.Fatalf("BlockUser = %+v, %v", blocked, err)
	}
	stored, err := store.Users.GetByID(ctx, other.ID)
	if err != nil || stored.Status != domain.UserStatusBlocked {
		t.Fatalf("stored = %+v, %v", stored, err)
	}

	unblocked, err := svc.UnblockUser(ctx, admin, other.ID)
	if err != nil || unblocked.IsBlocked() {
		t.Fatalf("UnblockUser = %+v, %v", unblocked, err)
	}
}

func TestListUsersAdminsFirst(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc := newUserService(store)
	seedUser(t, store, domain.User{Username: "z", Email: "z@example.com", FullName: "Zoe"})
	seedUser(t, store, domain.User{Username: "y", Email: "y@example.com", FullName: "Yash", Role: domain.RoleAdmin})
	seedUser(t, store, domain.User{Username: "a", Email: "a@example.com", FullName: "anil"})

	users, err := svc.ListUsers(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 3 || users[0].FullName != "Yash" || users[1].FullName != "anil" {
		t.Fatalf("order = %+v", users)
	}
}

func TestCreateHelperDefaults(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc := NewHelperService(HelperDependencies{HelperRepo: store.Helpers, EmployeeID: func() string { return "TS-EMP-007" }})

	h, err := svc.CreateHelper(ctx, nil, HelperInput{
		Name:        "Ravi",
		Phone:       "9876543210",
		ServiceType: "plumbing",
		Location:    "Pune",
		Skills:      " pipes, , leaks ",
		Rating:      "7",
	})
	if err != nil {
		t.Fatalf("CreateHelper: %v", err)
	}
	if h.IsAvailable || h.CompletedJobs != 0 || h.EmployeeID == nil || *h.EmployeeID != "TS-EMP-007" {
		t.Fatalf("helper = %+v", h)
	}
	if h.ServiceType != "Plumbing" || h.Rating != 5 || h.Experience != "1 year" || h.PricePerHour != nil {
		t.Fatalf("normalized fields = %+v", h)
	}
	if len(h.Skills) != 2 || h.Skills[1] != "leaks" {
		t.Fatalf("skills = %v", h.Skills)
	}

	blank, err := svc.CreateHelper(ctx, nil, HelperInput{Name: "Sita", Phone: "9876543210", ServiceType: "Cooking", Location: "Goa"})
	if err != nil {
		t.Fatal(err)
	}
	if blank.Rating != 4.0 {
		t.Fatalf("default rating = %v", blank.Rating)
	}

	_, err = svc.CreateHelper(ctx, nil, HelperInput{Name: "X", Phone: "9876543210", ServiceType: "Cooking", Location: "Goa", Rating: "NaN"})
	requireCode(t, err, apperrors.CodeValidation)
}

func TestSetAvailabilityShowsInDirectory(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc := NewHelperService(HelperDependencies{HelperRepo: store.Helpers})
	h, err := svc.CreateHelper(ctx, nil, HelperInput{Name: "Ravi", Phone: "9876543210", ServiceType: "Plumbing", Location: "Pune"})
	if err != nil {
		t.Fatal(err)
	}

	dir, _ := svc.ListAvailableHelpers(ctx)
	if dir.TotalHelpers != 0 {
		t.Fatalf("unapproved helper listed")
	}
	if _, err := svc.SetAvailability(ctx, nil, h.ID, true); err != nil {
		t.Fatal(err)
	}
	dir, err = svc.ListAvailableHelpers(ctx)
	if err != nil || dir.TotalHelpers != 1 {
		t.Fatalf("directory = %+v, %v", dir, err)
	}
}

func TestContactMarkReadOnce(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc := NewContactService(ContactDependencies{ContactRepo: store.Contacts})

	msg, err := svc.Submit(ctx, ContactInput{FullName: "Asha", Email: "asha@example.com", Message: "Hello"})
	if err != nil {
		t.Fatal(err)
	}
	if msg.Status != domain.ContactStatusNew || msg.Phone != nil {
		t.Fatalf("msg = %+v", msg)
	}

	read, err := svc.MarkRead(ctx, nil, msg.ID)
	if err != nil || read.Status != domain.ContactStatusRead {
		t.Fatalf("MarkRead = %+v, %v", read, err)
	}
	_, err = svc.MarkRead(ctx, nil, msg.ID)
	requireCode(t, err, apperrors.CodeInvalidTransition)

	unread := domain.ContactStatusNew
	items, err := svc.List(ctx, &unread)
	if err != nil || len(items) != 0 {
		t.Fatalf("unread = %v, %v", items, err)
	}
}

func TestContactSubmitValidation(t *testing.T) {
	svc := NewContactService(ContactDependencies{ContactRepo: repository.NewMemoryStore().Contacts})
	_, err := svc.Submit(context.Background(), ContactInput{FullName: "Asha", Email: "asha@example.com", Message: "Hi", Phone: "12"})
	requireCode(t, err, apperrors.CodeValidation)
	_, err = svc.Submit(context.Background(), ContactInput{FullName: "Asha", Email: "bad", Message: "Hi"})
	requireCode(t, err, apperrors.CodeValidation)
}
