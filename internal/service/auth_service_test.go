package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignup_CreatesUserAndProfile(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	u, err := env.auth.Signup(ctx, SignupInput{Username: " alice ", Password: "s3cretpass", Confirm: "s3cretpass"})
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.NotEqual(t, "s3cretpass", u.Password)

	p, err := env.repos.Profiles.GetByUserID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, p.UserID)
}

func TestSignup_RejectsDuplicateUsernameCaseInsensitive(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	_, err := env.auth.Signup(ctx, SignupInput{Username: "alice", Password: "s3cretpass", Confirm: "s3cretpass"})
	require.NoError(t, err)

	_, err = env.auth.Signup(ctx, SignupInput{Username: "ALICE", Password: "s3cretpass", Confirm: "s3cretpass"})
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, FieldErrors(err), "username")

	var users int64
	require.NoError(t, env.db.Table("users").Count(&users).Error)
	assert.EqualValues(t, 1, users)
}

func TestSignup_Validation(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	cases := []struct {
		name  string
		in    SignupInput
		field string
	}{
		{"short username", SignupInput{Username: "ab", Password: "s3cretpass", Confirm: "s3cretpass"}, "username"},
		{"bad characters", SignupInput{Username: "bad name!", Password: "s3cretpass", Confirm: "s3cretpass"}, "username"},
		{"short password", SignupInput{Username: "alice", Password: "short", Confirm: "short"}, "password1"},
		{"mismatch", SignupInput{Username: "alice", Password: "s3cretpass", Confirm: "different1"}, "password2"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.auth.Signup(ctx, tc.in)
			require.ErrorIs(t, err, ErrValidation)
			assert.Contains(t, FieldErrors(err), tc.field)
		})
	}
}

func TestAuthenticate(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	_, err := env.auth.Signup(ctx, SignupInput{Username: "alice", Password: "s3cretpass", Confirm: "s3cretpass"})
	require.NoError(t, err)

	u, err := env.auth.Authenticate(ctx, LoginInput{Username: "alice", Password: "s3cretpass"})
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)

	_, err = env.auth.Authenticate(ctx, LoginInput{Username: "alice", Password: "wrongpass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = env.auth.Authenticate(ctx, LoginInput{Username: "nobody", Password: "s3cretpass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = env.auth.Authenticate(ctx, LoginInput{Username: "", Password: ""})
	assert.ErrorIs(t, err, ErrValidation)
}
