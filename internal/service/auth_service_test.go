package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"anoa.com/homeboard/internal/model"
	"anoa.com/homeboard/internal/repository"
	"anoa.com/homeboard/pkg/apperror"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

func newTestAuthService(db *gorm.DB) AuthService {
	return NewAuthService(
		repository.NewUserRepository(db),
		repository.NewPostRepository(db),
		nil,
		testSecret,
		time.Hour,
	)
}

func TestRegisterAndLogin(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAuthService(db)

	registered, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice",
		Password: "secret123",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Bearer", registered.TokenType)
	assert.NotEmpty(t, registered.AccessToken)

	loggedIn, err := svc.Login(context.Background(), LoginInput{
		Username: "alice",
		Password: "secret123",
	})
	require.NoError(t, err)

	token, err := jwt.ParseWithClaims(loggedIn.AccessToken, &jwt.RegisteredClaims{}, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	claims := token.Claims.(*jwt.RegisteredClaims)
	assert.Equal(t, registered.User.ID.String(), claims.Subject)
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAuthService(db)

	_, err := svc.Register(context.Background(), RegisterInput{Username: "alice", Password: "secret123"}, nil)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterInput{Username: "alice", Password: "other456"}, nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, apperror.MapErrorToStatus(err))
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAuthService(db)

	_, err := svc.Register(context.Background(), RegisterInput{Username: "alice", Password: "secret123"}, nil)
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), LoginInput{Username: "alice", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, apperror.MapErrorToStatus(err))
}

func TestLoginUnknownUserLooksLikeWrongPassword(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAuthService(db)

	_, err := svc.Login(context.Background(), LoginInput{Username: "ghost", Password: "whatever"})
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, apperror.MapErrorToStatus(err))
	assert.Equal(t, "invalid username or password", err.Error())
}

func TestDeleteAccountCascades(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAuthService(db)

	res, err := svc.Register(context.Background(), RegisterInput{Username: "alice", Password: "secret123"}, nil)
	require.NoError(t, err)
	alice := res.User
	bob := createTestUser(t, db, "bob")

	person := createTestPerson(t, db, alice.ID, "Alice junior")
	createTestRecord(t, db, &model.Record{
		UserID: alice.ID, PersonID: &person.ID,
		Category: model.CategoryClothes, Content: "coat",
	})

	post := &model.Post{UserID: alice.ID, Content: "hello"}
	require.NoError(t, db.Create(post).Error)
	require.NoError(t, db.Create(&model.Comment{PostID: post.ID, UserID: bob.ID, Content: "hi"}).Error)
	require.NoError(t, db.Create(&model.PostLike{PostID: post.ID, UserID: bob.ID}).Error)

	bobPost := &model.Post{UserID: bob.ID, Content: "mine"}
	require.NoError(t, db.Create(bobPost).Error)

	require.NoError(t, svc.DeleteAccount(context.Background(), alice.ID))

	var count int64
	for _, q := range []*gorm.DB{
		db.Model(&model.User{}).Where("id = ?", alice.ID),
		db.Model(&model.Person{}).Where("user_id = ?", alice.ID),
		db.Model(&model.Record{}).Where("user_id = ?", alice.ID),
		db.Model(&model.Post{}).Where("user_id = ?", alice.ID),
		db.Model(&model.Comment{}).Where("post_id = ?", post.ID),
		db.Model(&model.PostLike{}).Where("post_id = ?", post.ID),
	} {
		require.NoError(t, q.Count(&count).Error)
		assert.Equal(t, int64(0), count)
	}

	// Other users' content survives.
	require.NoError(t, db.Model(&model.Post{}).Where("id = ?", bobPost.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
