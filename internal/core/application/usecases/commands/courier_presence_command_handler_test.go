package commands_test

import (
	"testing"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCourierPresence(t *testing.T) {
	w := newWorld(t)

	create := commands.NewCreateCourierCommandHandler(w.accounts)
	createCmd, err := commands.NewCreateCourierCommand(kernel.NewUUID(), "Eve")
	require.NoError(t, err)
	c, err := create.Handle(t.Context(), createCmd)
	require.NoError(t, err)

	online, err := commands.NewSetCourierOnlineCommand(c.ID(), true)
	require.NoError(t, err)
	updated, err := w.presence.SetOnline(t.Context(), online)
	require.NoError(t, err)
	assert.True(t, updated.IsOnline())
	assert.False(t, updated.IsDispatchable())

	ping, err := commands.NewUpdateCourierLocationCommand(c.ID(), 0.5, 0.5)
	require.NoError(t, err)
	updated, err = w.presence.UpdateLocation(t.Context(), ping)
	require.NoError(t, err)
	assert.True(t, updated.IsDispatchable())

	dispatchable, err := w.accounts.FindOnlineWithLocation(t.Context())
	require.NoError(t, err)
	require.Len(t, dispatchable, 1)
	assert.True(t, dispatchable[0].IsEqual(c))

	_, err = create.Handle(t.Context(), createCmd)
	require.ErrorIs(t, err, errs.ErrStateConflict)
}

func TestCourierPresence_UnknownCourier(t *testing.T) {
	w := newWorld(t)

	cmd, err := commands.NewSetCourierOnlineCommand(kernel.NewUUID(), true)
	require.NoError(t, err)
	_, err = w.presence.SetOnline(t.Context(), cmd)

	require.ErrorIs(t, err, errs.ErrObjectNotFound)
}

func TestCreateSupplyNodeCommandHandler(t *testing.T) {
	w := newWorld(t)
	handler := commands.NewCreateSupplyNodeCommandHandler(w.accounts.SupplyNodes())

	cmd, err := commands.NewCreateSupplyNodeCommand(kernel.NewUUID(), "Corner Pharmacy", mustLocation(t, 1, 2))
	require.NoError(t, err)
	n, err := handler.Handle(t.Context(), cmd)
	require.NoError(t, err)

	stored, err := w.accounts.SupplyNodes().Get(t.Context(), n.ID())
	require.NoError(t, err)
	assert.Equal(t, "Corner Pharmacy", stored.Name())
	assert.True(t, stored.HasLocation())
}
