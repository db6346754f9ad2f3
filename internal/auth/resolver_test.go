package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"taskManager/internal/auth"
	"taskManager/internal/clock"
	"taskManager/internal/models/user"
	"taskManager/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

var _ auth.UserRepository = (*MockUserRepository)(nil)

func TestResolver_Resolve(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)
	verifier := auth.NewVerifier("test-secret", clock.Fixed(now))

	userID := uuid.New()
	validToken, err := verifier.Issue(userID.String(), time.Hour)
	require.NoError(t, err)

	deletedID := uuid.New()
	deletedToken, err := verifier.Issue(deletedID.String(), time.Hour)
	require.NoError(t, err)

	expiredToken, err := auth.NewVerifier("test-secret", clock.Fixed(now.Add(-2*time.Hour))).Issue(userID.String(), time.Hour)
	require.NoError(t, err)

	notUUIDToken, err := verifier.Issue("42", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name      string
		header    string
		setupMock func(*MockUserRepository)
		wantID    uuid.UUID
		wantErr   bool
	}{
		{
			name:   "success",
			header: "Bearer " + validToken,
			setupMock: func(m *MockUserRepository) {
				m.On("GetByID", mock.Anything, userID).Return(&user.User{ID: userID}, nil)
			},
			wantID: userID,
		},
		{
			name:   "scheme is not checked",
			header: "Token " + validToken,
			setupMock: func(m *MockUserRepository) {
				m.On("GetByID", mock.Anything, userID).Return(&user.User{ID: userID}, nil)
			},
			wantID: userID,
		},
		{name: "absent header", header: "", wantErr: true},
		{name: "no token half", header: "Bearer", wantErr: true},
		{name: "blank token half", header: "Bearer   ", wantErr: true},
		{name: "malformed token", header: "Bearer not.a.jwt", wantErr: true},
		{name: "expired token", header: "Bearer " + expiredToken, wantErr: true},
		{name: "id claim is not a uuid", header: "Bearer " + notUUIDToken, wantErr: true},
		{
			name:   "deleted user",
			header: "Bearer " + deletedToken,
			setupMock: func(m *MockUserRepository) {
				m.On("GetByID", mock.Anything, deletedID).Return(nil, repository.ErrNotFound)
			},
			wantErr: true,
		},
		{
			name:   "identity store failure",
			header: "Bearer " + validToken,
			setupMock: func(m *MockUserRepository) {
				m.On("GetByID", mock.Anything, userID).Return(nil, errors.New("connection refused"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(MockUserRepository)
			if tt.setupMock != nil {
				tt.setupMock(users)
			}

			id, err := auth.NewResolver(verifier, users).Resolve(ctx, tt.header)
			if tt.wantErr {
				// every failure collapses to the same error
				assert.Equal(t, auth.ErrUnauthorized, err)
				assert.Equal(t, uuid.Nil, id)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantID, id)
			}

			users.AssertExpectations(t)
		})
	}
}

func TestOwnerContext(t *testing.T) {
	_, ok := auth.OwnerFromContext(context.Background())
	assert.False(t, ok)

	id := uuid.New()
	got, ok := auth.OwnerFromContext(auth.WithOwner(context.Background(), id))
	assert.True(t, ok)
	assert.Equal(t, id, got)
}
