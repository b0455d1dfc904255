// Tmmbs - Small Business Site with Booking and Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tmmbs

package auth

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"
)

func newTestVerifier(o Oracle, maxFailures uint32) *Verifier {
	return NewVerifier(o, VerifierConfig{
		Name:        "test-" + time.Now().Format("150405.000000000"),
		Timeout:     time.Second,
		MaxFailures: maxFailures,
		OpenTimeout: time.Minute,
	})
}

func TestVerifierEmptyTokenSkipsOracle(t *testing.T) {
	t.Parallel()
	o := &countingOracle{result: func(string) (*DecodedToken, error) { return okToken("u", "a@b.com"), nil }}
	v := newTestVerifier(o, 5)

	for _, raw := range []string{"", "   ", "\t\n"} {
		_, err := v.Verify(context.Background(), raw)
		requireKind(t, err, Malformed)
		if !errors.Is(err, ErrEmptyToken) {
			t.Errorf("Verify(%q) error should wrap ErrEmptyToken", raw)
		}
	}
	if n := o.calls.Load(); n != 0 {
		t.Errorf("oracle called %d times, want 0", n)
	}
}

func TestVerifierSuccess(t *testing.T) {
	t.Parallel()
	var seen string
	o := &countingOracle{result: func(tok string) (*DecodedToken, error) {
		seen = tok
		return okToken("uid-42", "owner@example.com"), nil
	}}
	v := newTestVerifier(o, 5)

	claims, err := v.Verify(context.Background(), "  header.payload.sig ")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if seen != "header.payload.sig" {
		t.Errorf("oracle saw %q, want trimmed token", seen)
	}
	if claims.Subject != "uid-42" || claims.Email != "owner@example.com" {
		t.Errorf("claims = %+v", claims)
	}
	if claims.EmailVerified == nil || !*claims.EmailVerified {
		t.Error("email_verified not carried through")
	}
}

func TestVerifierFailureKinds(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		result func(string) (*DecodedToken, error)
		want   FailureKind
	}{
		{"expired", func(string) (*DecodedToken, error) { return nil, NewAuthError(Expired, nil) }, Expired},
		{"revoked", func(string) (*DecodedToken, error) { return nil, NewAuthError(Revoked, nil) }, Revoked},
		{"malformed", func(string) (*DecodedToken, error) { return nil, NewAuthError(Malformed, nil) }, Malformed},
		{"foreign error", func(string) (*DecodedToken, error) { return nil, errors.New("dial tcp: refused") }, OracleUnavailable},
		{"nil token", func(string) (*DecodedToken, error) { return nil, nil }, OracleUnavailable},
		{"no subject", func(string) (*DecodedToken, error) { return &DecodedToken{Claims: map[string]any{}}, nil }, Malformed},
		{"panic", func(string) (*DecodedToken, error) { panic("oracle exploded") }, OracleUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			v := newTestVerifier(&countingOracle{result: tt.result}, 5)
			claims, err := v.Verify(context.Background(), "tok")
			if claims != nil {
				t.Errorf("claims = %+v, want nil", claims)
			}
			requireKind(t, err, tt.want)
		})
	}
}

func TestVerifierBreakerOpensOnOracleFailures(t *testing.T) {
	t.Parallel()
	o := &countingOracle{result: func(string) (*DecodedToken, error) {
		return nil, errors.New("provider down")
	}}
	v := newTestVerifier(o, 2)

	for i := 0; i < 2; i++ {
		_, err := v.Verify(context.Background(), "tok")
		requireKind(t, err, OracleUnavailable)
	}
	if v.State() != "open" {
		t.Fatalf("State() = %q, want open", v.State())
	}

	_, err := v.Verify(context.Background(), "tok")
	requireKind(t, err, OracleUnavailable)
	if n := o.calls.Load(); n != 2 {
		t.Errorf("oracle called %d times, want 2 (open breaker must short-circuit)", n)
	}
}

func TestVerifierUserErrorsDoNotTripBreaker(t *testing.T) {
	t.Parallel()
	o := &countingOracle{result: func(string) (*DecodedToken, error) {
		return nil, NewAuthError(Expired, errors.New("token expired"))
	}}
	v := newTestVerifier(o, 2)

	for i := 0; i < 10; i++ {
		_, err := v.Verify(context.Background(), "tok")
		requireKind(t, err, Expired)
	}
	if v.State() != "closed" {
		t.Errorf("State() = %q, want closed", v.State())
	}
	if n := o.calls.Load(); n != 10 {
		t.Errorf("oracle called %d times, want 10", n)
	}
}

func TestVerifierTimeoutReachesOracle(t *testing.T) {
	t.Parallel()
	o := OracleFunc(func(ctx context.Context, _ string) (*DecodedToken, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	v := NewVerifier(o, VerifierConfig{Name: "timeout-test", Timeout: 20 * time.Millisecond, MaxFailures: 5})

	start := time.Now()
	_, err := v.Verify(context.Background(), "tok")
	requireKind(t, err, OracleUnavailable)
	if time.Since(start) > 2*time.Second {
		t.Error("Verify did not honour the timeout")
	}
}

func TestVerifierCancelledCallersDoNotTripBreaker(t *testing.T) {
	t.Parallel()
	o := &countingOracle{result: func(string) (*DecodedToken, error) { return okToken("u1", "a@b.com"), nil }}
	v := newTestVerifier(o, 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for i := 0; i < 5; i++ {
		_, err := v.Verify(ctx, "tok")
		requireKind(t, err, OracleUnavailable)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled in chain", err)
		}
	}
	if v.State() != "closed" {
		t.Fatalf("State() = %q, want closed", v.State())
	}

	claims, err := v.Verify(context.Background(), "tok")
	if err != nil || claims.Subject != "u1" {
		t.Fatalf("healthy Verify = %+v, %v", claims, err)
	}
	if v.State() != "closed" {
		t.Errorf("State() = %q, want closed", v.State())
	}
}

func TestVerifierCallerCancelledInFlightDoesNotTripBreaker(t *testing.T) {
	t.Parallel()
	started := make(chan struct{}, 5)
	o := OracleFunc(func(ctx context.Context, _ string) (*DecodedToken, error) {
		started <- struct{}{}
		<-ctx.Done()
		return nil, NewAuthError(OracleUnavailable, ctx.Err())
	})
	v := NewVerifier(o, VerifierConfig{Name: "inflight-cancel-test", Timeout: time.Minute, MaxFailures: 2})

	for i := 0; i < 5; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			<-started
			cancel()
		}()
		_, err := v.Verify(ctx, "tok")
		requireKind(t, err, OracleUnavailable)
		cancel()
	}
	if v.State() != "closed" {
		t.Errorf("State() = %q, want closed", v.State())
	}
}

func TestVerifierIsIdempotent(t *testing.T) {
	t.Parallel()
	tok := okToken("uid-7", "owner@example.com")
	tok.Claims["name"] = "Ada"
	tok.Claims["firebase"] = map[string]any{"sign_in_provider": "password"}
	o := &countingOracle{result: func(string) (*DecodedToken, error) { return tok, nil }}
	v := newTestVerifier(o, 5)

	first, err := v.Verify(context.Background(), "same.token.sig")
	if err != nil {
		t.Fatalf("first Verify: %v", err)
	}
	second, err := v.Verify(context.Background(), "same.token.sig")
	if err != nil {
		t.Fatalf("second Verify: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("claims differ between calls:\n first  %+v\n second %+v", first, second)
	}
	if first == second {
		t.Error("Verify returned a shared *Claims; callers may mutate their copy")
	}

	roles := NewAdminAllowList([]string{"owner@example.com"}, nil)
	p1 := newPrincipal(first, rolesFor(roles, first))
	p2 := newPrincipal(second, rolesFor(roles, second))
	if p1.Subject() != p2.Subject() || p1.Email() != p2.Email() || !reflect.DeepEqual(p1.Roles().Strings(), p2.Roles().Strings()) {
		t.Errorf("principals differ: %+v vs %+v", p1, p2)
	}
	if n := o.calls.Load(); n != 2 {
		t.Errorf("oracle called %d times, want 2", n)
	}
}
