package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/storefront/internal/models"
	"github.com/magabrotheeeer/storefront/internal/tracing/tracingtest"
)

type fakeUsers struct {
	users []*models.User
	err   error
	valid bool
}

func (f *fakeUsers) GetAll(context.Context) ([]*models.User, error) {
	return f.users, f.err
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, f.err
}

func (f *fakeUsers) ValidatePasswordResetToken(context.Context, string) (bool, error) {
	return f.valid, f.err
}

func execute(t *testing.T, users *fakeUsers, args ...string) (string, *tracingtest.Recorder, error) {
	t.Helper()
	t.Setenv("TRACEPARENT", "")

	tracer, rec := tracingtest.New()
	factory := func(*cobra.Command) (*deps, error) {
		return &deps{tracer: tracer, users: users}, nil
	}

	cmd := NewRootCmd(factory)
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), rec, err
}

func TestUsersList(t *testing.T) {
	users := &fakeUsers{users: []*models.User{
		{ID: 1, Name: "Ann", Email: "ann@example.com", Status: 1},
		{ID: 2, Name: "Bob", Email: "bob@example.com"},
	}}

	out, rec, err := execute(t, users, "users:list")
	require.NoError(t, err)

	assert.Contains(t, out, "EMAIL")
	assert.Contains(t, out, "ann@example.com")
	assert.Contains(t, out, "bob@example.com")

	require.Len(t, rec.Ended(), 1)
	span := rec.Ended()[0]
	assert.Equal(t, "users:list", span.Name())
	kind, _ := tracingtest.Attr(span, "type")
	assert.Equal(t, "cli", kind.AsString())
	command, _ := tracingtest.Attr(span, "command.name")
	assert.Equal(t, "users:list", command.AsString())
	assert.Equal(t, 1, rec.Flushes())
}

func TestUsersList_RemoteFailureStillFlushes(t *testing.T) {
	_, rec, err := execute(t, &fakeUsers{err: errors.New("remote down")}, "users:list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "remote down")

	require.Len(t, rec.Ended(), 1)
	errTag, ok := tracingtest.Attr(rec.Ended()[0], "error")
	require.True(t, ok)
	assert.True(t, errTag.AsBool())
	assert.Equal(t, 1, rec.Flushes())
}

func TestUsersShow(t *testing.T) {
	users := &fakeUsers{users: []*models.User{{ID: 7, Name: "Ann", Email: "ann@example.com"}}}

	out, rec, err := execute(t, users, "users:show", "--id", "7")
	require.NoError(t, err)
	assert.Contains(t, out, `"email": "ann@example.com"`)
	assert.NotNil(t, rec.EndedByName("users:show"))

	_, _, err = execute(t, users, "users:show", "--id", "8")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestUsersShow_RequiresID(t *testing.T) {
	_, rec, err := execute(t, &fakeUsers{}, "users:show")
	require.Error(t, err)
	assert.Empty(t, rec.Ended())
}

func TestPasswordResetCheck(t *testing.T) {
	out, _, err := execute(t, &fakeUsers{valid: true}, "password-reset:check", "--token", "abc")
	require.NoError(t, err)
	assert.True(t, strings.Contains(out, "token is valid"))

	_, rec, err := execute(t, &fakeUsers{valid: false}, "password-reset:check", "--token", "abc")
	assert.ErrorIs(t, err, errTokenInvalid)
	assert.NotNil(t, rec.EndedByName("password-reset:check"))
}

func TestRunInUnit_ContinuesInboundTrace(t *testing.T) {
	t.Setenv("TRACEPARENT", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")

	tracer, rec := tracingtest.New()
	cmd := NewRootCmd(func(*cobra.Command) (*deps, error) {
		return &deps{tracer: tracer, users: &fakeUsers{}}, nil
	})
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetArgs([]string{"users:list"})
	require.NoError(t, cmd.Execute())

	require.Len(t, rec.Ended(), 1)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", rec.Ended()[0].Parent().TraceID().String())
}

func TestRoot_Help(t *testing.T) {
	out, _, err := execute(t, &fakeUsers{}, "--help")
	require.NoError(t, err)
	for _, phrase := range []string{"users:list", "users:show", "password-reset:check"} {
		assert.Contains(t, out, phrase)
	}
}
