package silence

import (
	"context"
	"errors"
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeObject answers the calls and properties the dunst controller uses.
// Any other BusObject method panics through the nil embedded interface.
type fakeObject struct {
	dbus.BusObject
	owner bool
	props map[string]dbus.Variant
}

func (o *fakeObject) CallWithContext(_ context.Context, method string, _ dbus.Flags, _ ...interface{}) *dbus.Call {
	if method != "org.freedesktop.DBus.NameHasOwner" {
		return &dbus.Call{Err: errors.New("unknown method " + method)}
	}
	return &dbus.Call{Body: []interface{}{o.owner}}
}

func (o *fakeObject) GetProperty(p string) (dbus.Variant, error) {
	v, ok := o.props[p]
	if !ok {
		return dbus.Variant{}, errors.New("no such property")
	}
	return v, nil
}

func (o *fakeObject) SetProperty(p string, v interface{}) error {
	if _, ok := o.props[p]; !ok {
		return errors.New("no such property")
	}
	o.props[p] = v.(dbus.Variant)
	return nil
}

type fakeSessionBus struct {
	obj    *fakeObject
	closed bool
}

func (b *fakeSessionBus) BusObject() dbus.BusObject { return b.obj }

func (b *fakeSessionBus) Object(string, dbus.ObjectPath) dbus.BusObject { return b.obj }

func (b *fakeSessionBus) Connected() bool { return !b.closed }

func (b *fakeSessionBus) Close() error {
	b.closed = true
	return nil
}

func newTestDunst(bus *fakeSessionBus) *Dunst {
	return &Dunst{connect: func() (sessionBus, error) { return bus, nil }}
}

func TestDunst_Paused(t *testing.T) {
	ctx := context.Background()
	bus := &fakeSessionBus{obj: &fakeObject{
		owner: true,
		props: map[string]dbus.Variant{dunstPausedKey: dbus.MakeVariant(false)},
	}}
	d := newTestDunst(bus)

	granted, err := d.PermissionGranted(ctx)
	require.NoError(t, err)
	assert.True(t, granted)

	require.NoError(t, d.Enable(ctx))
	active, err := d.IsActive(ctx)
	require.NoError(t, err)
	assert.True(t, active)

	require.NoError(t, d.Disable(ctx))
	active, err = d.IsActive(ctx)
	require.NoError(t, err)
	assert.False(t, active)

	require.NoError(t, Close(d))
	assert.True(t, bus.closed)
}

func TestDunst_NotGranted(t *testing.T) {
	tests := []struct {
		name string
		obj  *fakeObject
	}{
		{name: "no notification daemon", obj: &fakeObject{owner: false}},
		{name: "another notification daemon", obj: &fakeObject{owner: true, props: map[string]dbus.Variant{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDunst(&fakeSessionBus{obj: tt.obj})

			granted, err := d.PermissionGranted(context.Background())
			require.NoError(t, err)
			assert.False(t, granted)
			assert.ErrorIs(t, d.Enable(context.Background()), ErrPermissionDenied)
		})
	}
}

func TestDunst_NoSessionBus(t *testing.T) {
	d := &Dunst{connect: func() (sessionBus, error) { return nil, errors.New("no DBUS_SESSION_BUS_ADDRESS") }}

	_, err := d.PermissionGranted(context.Background())
	assert.ErrorContains(t, err, "session bus")
}

func TestDunst_ReconnectsAfterClose(t *testing.T) {
	connects := 0
	bus := &fakeSessionBus{obj: &fakeObject{owner: true, props: map[string]dbus.Variant{dunstPausedKey: dbus.MakeVariant(true)}}}
	d := &Dunst{connect: func() (sessionBus, error) {
		connects++
		bus.closed = false
		return bus, nil
	}}

	_, err := d.IsActive(context.Background())
	require.NoError(t, err)
	require.NoError(t, d.Close())
	_, err = d.IsActive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, connects)
}
