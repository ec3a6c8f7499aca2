package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vncsmyrnk/accesso/internal/core/domain"
)

func TestApplicationService(t *testing.T) {
	f := newFixture()
	svc := NewApplicationService(f.repos, f.crypto)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.ApplicationForm{
		Title:       "Blog",
		RedirectURI: []string{"https://blog.example.com/cb"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.SecretKey)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Empty(t, got.SecretKey)
	assert.Equal(t, "Blog", got.Title)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Empty(t, list[0].SecretKey)

	title := "Blog v2"
	edited, err := svc.Edit(ctx, created.ID, domain.ApplicationEditForm{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Blog v2", edited.Title)
	assert.Equal(t, []string{"https://blog.example.com/cb"}, edited.RedirectURI)
	assert.Empty(t, edited.SecretKey)

	regenerated, err := svc.RegenerateSecret(ctx, created.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, regenerated.SecretKey)
	assert.NotEqual(t, created.SecretKey, regenerated.SecretKey)

	stored, err := f.repos.Applications.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, regenerated.SecretKey, stored.SecretKey)
}

func TestApplicationService_Errors(t *testing.T) {
	f := newFixture()
	svc := NewApplicationService(f.repos, f.crypto)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.ApplicationForm{Title: "X", RedirectURI: []string{"nope"}})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"redirectUri", "title"}, sortedKeys(verr.Fields))

	_, err = svc.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrClientNotFound)

	_, err = svc.RegenerateSecret(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrClientNotFound)

	_, err = svc.Edit(ctx, uuid.New(), domain.ApplicationEditForm{RedirectURI: []string{}})
	assert.ErrorIs(t, err, domain.ErrInvalidForm)
}
