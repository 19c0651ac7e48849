// Waypoint - Geofenced Campus Tour Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSanitizeLogValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"campus", "campus"},
		{"north\ncampus", `north\x0acampus`},
		{"a\tb\x7f", `a\x09b\x7f`},
		{"café", "café"},
	}
	for _, tt := range tests {
		if got := sanitizeLogValue(tt.in); got != tt.want {
			t.Errorf("sanitizeLogValue(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGetIntParam(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		query   string
		want    int
		wantErr bool
	}{
		{name: "default", query: "", want: 50},
		{name: "value", query: "limit=7", want: 7},
		{name: "lower bound", query: "limit=1", want: 1},
		{name: "below range", query: "limit=0", wantErr: true},
		{name: "above range", query: "limit=501", wantErr: true},
		{name: "not a number", query: "limit=ten", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)
			got, err := getIntParam(r, "limit", 50, 1, 500)
			if tt.wantErr {
				var pe *paramError
				if !errors.As(err, &pe) || !strings.HasPrefix(pe.Error(), "limit ") {
					t.Errorf("err = %v, want paramError for limit", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("getIntParam() = %d, %v; want %d", got, err, tt.want)
			}
		})
	}
}

func TestFloatParams(t *testing.T) {
	t.Parallel()

	tests := []struct {
		query   string
		want    float64
		wantErr bool
	}{
		{query: "", want: 100},
		{query: "radius=12.5", want: 12.5},
		{query: "radius=NaN", wantErr: true},
		{query: "radius=Inf", wantErr: true},
		{query: "radius=-1", wantErr: true},
		{query: "radius=5001", wantErr: true},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)
		got, err := getFloatParam(r, "radius", 100, 0, 5000)
		if (err != nil) != tt.wantErr || (!tt.wantErr && got != tt.want) {
			t.Errorf("getFloatParam(%q) = %v, %v", tt.query, got, err)
		}
	}

	r := httptest.NewRequest(http.MethodGet, "/?lat=95", nil)
	if v, err := requireFloatParam(r, "lat"); err != nil || v != 95 {
		t.Errorf("requireFloatParam out of range = %v, %v; want 95 unclamped", v, err)
	}
	if _, err := requireFloatParam(r, "lon"); err == nil || !strings.Contains(err.Error(), "required") {
		t.Errorf("missing lon err = %v", err)
	}
	r = httptest.NewRequest(http.MethodGet, "/?lat=-Inf", nil)
	if _, err := requireFloatParam(r, "lat"); err == nil {
		t.Error("expected error for -Inf")
	}
}
