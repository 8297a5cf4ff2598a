package gate_test

import (
	"context"
	"testing"

	"github.com/jrsteele09/fewv-learns/gate"
	"github.com/jrsteele09/fewv-learns/session"
	"github.com/jrsteele09/fewv-learns/tokens"
	"github.com/stretchr/testify/require"
)

type fixedState session.State

func (f fixedState) Current() session.State {
	return session.State(f)
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name               string
		state              session.State
		requireEntitlement bool
		wantReason         gate.Reason
	}{
		{name: "anonymous, page", state: session.State{}, requireEntitlement: false, wantReason: gate.NotAuthenticated},
		{name: "anonymous, course", state: session.State{}, requireEntitlement: true, wantReason: gate.NotAuthenticated},
		{name: "logged in, page", state: session.State{Authenticated: true}, requireEntitlement: false},
		{name: "logged in, course", state: session.State{Authenticated: true}, requireEntitlement: true, wantReason: gate.NoEntitlement},
		{name: "entitled, page", state: session.State{Authenticated: true, Entitled: true}, requireEntitlement: false},
		{name: "entitled, course", state: session.State{Authenticated: true, Entitled: true}, requireEntitlement: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := gate.New(fixedState(tt.state)).Evaluate(tt.requireEntitlement)
			if tt.wantReason == 0 {
				require.True(t, d.Allowed())
				return
			}
			require.False(t, d.Allowed())
			require.Equal(t, tt.wantReason, d.Denial.Reason)
		})
	}
}

func TestEvaluate_DenialTargets(t *testing.T) {
	d := gate.New(fixedState{}).Evaluate(true)
	require.Equal(t, &gate.Denial{Reason: gate.NotAuthenticated, RedirectTo: "/register", Notice: gate.NoticeRegister}, d.Denial)

	d = gate.New(fixedState{Authenticated: true}).Evaluate(true)
	require.Equal(t, &gate.Denial{Reason: gate.NoEntitlement, RedirectTo: "/courses", Notice: gate.NoticePurchase}, d.Denial)
}

func TestEvaluate_ConfiguredRedirects(t *testing.T) {
	g := gate.New(fixedState{}, gate.WithLoginRedirect("/login"), gate.WithCatalogRedirect(""))
	require.Equal(t, "/login", g.Evaluate(false).Denial.RedirectTo)

	g = gate.New(fixedState{Authenticated: true}, gate.WithLoginRedirect("/login"), gate.WithCatalogRedirect(""))
	require.Equal(t, gate.DefaultCatalogRedirect, g.Evaluate(true).Denial.RedirectTo)
}

func TestEvaluate_FollowsSession(t *testing.T) {
	ctx := context.Background()
	s := session.New(tokens.NewMemoryStore())
	g := gate.New(s)
	require.Equal(t, gate.NotAuthenticated, g.Evaluate(false).Denial.Reason)

	s.Login(ctx)
	require.True(t, g.Evaluate(false).Allowed())
	require.Equal(t, gate.NoEntitlement, g.Evaluate(true).Denial.Reason)

	s.Logout(ctx)
	require.Equal(t, gate.NotAuthenticated, g.Evaluate(true).Denial.Reason)
}
