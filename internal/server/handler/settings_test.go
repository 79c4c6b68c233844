package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alanyoungcy/boredraw/internal/domain"
)

type fakeSettingsStore struct {
	stored *domain.Settings
}

func (f *fakeSettingsStore) Get(context.Context) (domain.Settings, error) {
	if f.stored == nil {
		return domain.Settings{}, domain.ErrNotFound
	}
	return *f.stored, nil
}

func (f *fakeSettingsStore) Put(_ context.Context, s domain.Settings) error {
	f.stored = &s
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func defaults() domain.Settings {
	return domain.Settings{BackStake: 50, CommissionDiscount: 0, Retention: 80}
}

func TestGetSettings_ReturnsDefaultsWhenUnset(t *testing.T) {
	h := NewSettingsHandler(&fakeSettingsStore{}, defaults(), discardLogger())

	rec := httptest.NewRecorder()
	h.GetSettings(rec, httptest.NewRequest(http.MethodGet, "/api/settings", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got domain.Settings
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.BackStake != 50 || got.Retention != 80 {
		t.Errorf("settings = %+v, want the configured defaults", got)
	}
}

func TestUpdateSettings_PartialUpdateKeepsOtherFields(t *testing.T) {
	store := &fakeSettingsStore{stored: &domain.Settings{
		BackStake:          50,
		CommissionDiscount: 10,
		Retention:          80,
		WebhookURL:         "https://hook.example",
	}}
	h := NewSettingsHandler(store, defaults(), discardLogger())

	body := strings.NewReader(`{"back_stake": 120}`)
	rec := httptest.NewRecorder()
	h.UpdateSettings(rec, httptest.NewRequest(http.MethodPut, "/api/settings", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if store.stored.BackStake != 120 {
		t.Errorf("BackStake = %g, want 120", store.stored.BackStake)
	}
	if store.stored.CommissionDiscount != 10 || store.stored.Retention != 80 {
		t.Errorf("untouched fields changed: %+v", store.stored)
	}
	if store.stored.WebhookURL != "https://hook.example" {
		t.Errorf("WebhookURL = %q, want unchanged", store.stored.WebhookURL)
	}
}

func TestUpdateSettings_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"zero stake", `{"back_stake": 0}`},
		{"negative stake", `{"back_stake": -5}`},
		{"discount over 100", `{"commission_discount": 120}`},
		{"negative retention", `{"retention": -1}`},
		{"not json", `stake=50`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeSettingsStore{}
			h := NewSettingsHandler(store, defaults(), discardLogger())

			rec := httptest.NewRecorder()
			h.UpdateSettings(rec, httptest.NewRequest(http.MethodPut, "/api/settings", strings.NewReader(tt.body)))

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			if store.stored != nil {
				t.Error("invalid payloads must not be persisted")
			}
		})
	}
}

func TestUpdateSettings_ExplicitZeroDiscountIsValid(t *testing.T) {
	store := &fakeSettingsStore{stored: &domain.Settings{
		BackStake:          50,
		CommissionDiscount: 20,
		Retention:          80,
	}}
	h := NewSettingsHandler(store, defaults(), discardLogger())

	body := strings.NewReader(`{"commission_discount": 0}`)
	rec := httptest.NewRecorder()
	h.UpdateSettings(rec, httptest.NewRequest(http.MethodPut, "/api/settings", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if store.stored.CommissionDiscount != 0 {
		t.Errorf("CommissionDiscount = %g, want an explicit 0 to stick", store.stored.CommissionDiscount)
	}
}
