package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brgyhealth/bhc_api/internal/models"
	"github.com/brgyhealth/bhc_api/internal/utils"
)

func TestGetReturnsSnapshotNotLiveRecord(t *testing.T) {
	store := NewSessionStore()
	created, err := store.Create()
	require.NoError(t, err)

	before, err := store.Get(created.ID)
	require.NoError(t, err)

	_, err = store.Update(created.ID, func(sess *models.RegistrationSession) error {
		sess.Form.Personal.FirstName = "Juan"
		sess.Form.Errors["phone"] = true
		return nil
	})
	require.NoError(t, err)

	// The earlier snapshot is untouched by the later write.
	assert.Empty(t, before.Form.Personal.FirstName)
	assert.False(t, before.Form.Errors["phone"])
}

func TestUpdateReturnsSnapshotNotLiveRecord(t *testing.T) {
	store := NewSessionStore()
	created, err := store.Create()
	require.NoError(t, err)

	returned, err := store.Update(created.ID, func(sess *models.RegistrationSession) error {
		sess.Form.Personal.FirstName = "Juan"
		return nil
	})
	require.NoError(t, err)

	// Writing through the returned copy must not leak into the store.
	returned.Form.Personal.FirstName = "Maria"
	returned.Form.Errors["email"] = true

	current, err := store.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Juan", current.Form.Personal.FirstName)
	assert.False(t, current.Form.Errors["email"])
}

func TestUpdateErrorKeepsMutations(t *testing.T) {
	store := NewSessionStore()
	created, err := store.Create()
	require.NoError(t, err)

	// Validation-style writes flag fields and then fail the update; the
	// flags must still land on the live session.
	_, err = store.Update(created.ID, func(sess *models.RegistrationSession) error {
		sess.Form.Errors["phone"] = true
		return utils.ErrValidation
	})
	require.ErrorIs(t, err, utils.ErrValidation)

	current, err := store.Get(created.ID)
	require.NoError(t, err)
	assert.True(t, current.Form.Errors["phone"])
}

func TestSweepPurgesIdleSessions(t *testing.T) {
	store := NewSessionStore()
	stale, err := store.Create()
	require.NoError(t, err)
	fresh, err := store.Create()
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	_, err = store.Update(fresh.ID, func(sess *models.RegistrationSession) error {
		sess.Form.Personal.FirstName = "Juan"
		return nil
	})
	require.NoError(t, err)

	purged := store.Sweep(time.Millisecond)
	assert.Equal(t, 1, purged)
	assert.Equal(t, 1, store.Count())

	_, err = store.Get(stale.ID)
	assert.ErrorIs(t, err, utils.ErrSessionNotFound)
	_, err = store.Get(fresh.ID)
	assert.NoError(t, err)
}
