package services

import (
	"context"
	"testing"
	"time"

	"spendwise/internal/models"
	"spendwise/internal/testutil"
)

func TestCreateUser(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db, &fakeUploader{})

		user, err := svc.CreateUser("alice@example.com", "password123", "Alice")
		testutil.AssertNoError(t, err)

		if user.ID == "" {
			t.Fatal("expected non-empty user ID")
		}
		if user.Email != "alice@example.com" {
			t.Errorf("expected email alice@example.com, got %q", user.Email)
		}
		if user.Password == "password123" {
			t.Error("expected password to be hashed")
		}
		if !user.IsActive {
			t.Error("expected new user to be active")
		}
	})

	t.Run("email_normalized_to_lowercase", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db, &fakeUploader{})

		user, err := svc.CreateUser("Bob@Example.COM", "password123", "Bob")
		testutil.AssertNoError(t, err)
		if user.Email != "bob@example.com" {
			t.Errorf("expected lowercased email, got %q", user.Email)
		}
	})

	t.Run("duplicate_email", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db, &fakeUploader{})

		_, err := svc.CreateUser("carol@example.com", "password123", "Carol")
		testutil.AssertNoError(t, err)

		_, err = svc.CreateUser("CAROL@example.com", "password456", "Carol Again")
		testutil.AssertAppError(t, err, "DUPLICATE_EMAIL")
	})

	t.Run("missing_fields", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db, &fakeUploader{})

		_, err := svc.CreateUser("", "password123", "")
		testutil.AssertAppError(t, err, "INVALID_INPUT")

		_, err = svc.CreateUser("dave@example.com", "", "")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestAttemptLogin(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db, &fakeUploader{})
		user := testutil.CreateTestUser(t, db)

		loggedIn, err := svc.AttemptLogin(user.Email, "password123")
		testutil.AssertNoError(t, err)
		if loggedIn.ID != user.ID {
			t.Errorf("expected user %s, got %s", user.ID, loggedIn.ID)
		}
		if loggedIn.LastLoginAt == nil {
			t.Error("expected last login timestamp to be set")
		}
	})

	t.Run("wrong_password", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db, &fakeUploader{})
		user := testutil.CreateTestUser(t, db)

		_, err := svc.AttemptLogin(user.Email, "wrong")
		testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")
	})

	t.Run("unknown_email", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db, &fakeUploader{})

		_, err := svc.AttemptLogin("nobody@example.com", "password123")
		testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")
	})

	t.Run("locks_after_repeated_failures", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db, &fakeUploader{})
		user := testutil.CreateTestUser(t, db)

		for i := 0; i < maxFailedLogins; i++ {
			_, err := svc.AttemptLogin(user.Email, "wrong")
			testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")
		}

		// Even the right password is rejected while locked
		_, err := svc.AttemptLogin(user.Email, "password123")
		testutil.AssertAppError(t, err, "ACCOUNT_LOCKED")
	})

	t.Run("lock_expires", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db, &fakeUploader{})
		user := testutil.CreateTestUser(t, db)

		expired := time.Now().Add(-time.Minute)
		if err := db.Model(&models.User{}).Where("id = ?", user.ID).Update("locked_until", expired).Error; err != nil {
			t.Fatalf("failed to set lock: %v", err)
		}

		_, err := svc.AttemptLogin(user.Email, "password123")
		testutil.AssertNoError(t, err)
	})
}

func TestRefreshTokenHash(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewUserService(db, &fakeUploader{})
	user := testutil.CreateTestUser(t, db)

	err := svc.StoreRefreshTokenHash(user.ID, "abc123hash")
	testutil.AssertNoError(t, err)

	hash, err := svc.GetRefreshTokenHash(user.ID)
	testutil.AssertNoError(t, err)
	if hash != "abc123hash" {
		t.Errorf("expected stored hash, got %q", hash)
	}
}

func TestUpdateProfile(t *testing.T) {
	t.Run("rename", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db, &fakeUploader{})
		user := testutil.CreateTestUser(t, db)

		name := "New Name"
		updated, err := svc.UpdateProfile(context.Background(), user.ID, ProfilePatch{Name: &name})
		testutil.AssertNoError(t, err)
		if updated.Name != name {
			t.Errorf("expected name %q, got %q", name, updated.Name)
		}
	})

	t.Run("uploads_pending_avatar", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		up := &fakeUploader{}
		svc := NewUserService(db, up)
		user := testutil.CreateTestUser(t, db)

		image := "avatar-001.png"
		updated, err := svc.UpdateProfile(context.Background(), user.ID, ProfilePatch{Image: &image})
		testutil.AssertNoError(t, err)
		if updated.Image != "https://img.test/users/avatar-001.png" {
			t.Errorf("unexpected avatar URL: %q", updated.Image)
		}
		if up.calls != 1 {
			t.Errorf("expected 1 upload, got %d", up.calls)
		}
	})

	t.Run("upload_failure", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		up := &fakeUploader{fail: true}
		svc := NewUserService(db, up)
		user := testutil.CreateTestUser(t, db)

		image := "avatar-001.png"
		_, err := svc.UpdateProfile(context.Background(), user.ID, ProfilePatch{Image: &image})
		testutil.AssertAppError(t, err, "ATTACHMENT_UPLOAD_FAILED")
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db, &fakeUploader{})

		name := "Ghost"
		_, err := svc.UpdateProfile(context.Background(), "missing-id", ProfilePatch{Name: &name})
		testutil.AssertAppError(t, err, "USER_NOT_FOUND")
	})
}
