package api

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dutrus/MESALIB/internal/api/shared"
	"github.com/dutrus/MESALIB/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAvailabilityWindow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		query   string
		want    availabilityWindow
		wantErr bool
	}{
		{
			name:  "date",
			query: "date=2025-03-10",
			want:  availabilityWindow{Day: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)},
		},
		{
			name:  "date wins over range",
			query: "date=2025-03-10&from=2020-01-01T00:00:00Z&to=2030-01-01T00:00:00Z",
			want:  availabilityWindow{Day: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)},
		},
		{
			name:  "range",
			query: "from=2025-03-10T09:00:00Z&to=2025-03-12T18:00:00Z",
			want: availabilityWindow{
				From: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
				To:   time.Date(2025, 3, 12, 18, 0, 0, 0, time.UTC),
			},
		},
		{name: "bad date", query: "date=2025/03/10", wantErr: true},
		{name: "nothing", query: "", wantErr: true},
		{name: "only to", query: "to=2025-03-12T18:00:00Z", wantErr: true},
		{name: "bad from", query: "from=monday&to=2025-03-12T18:00:00Z", wantErr: true},
		{name: "bad to", query: "from=2025-03-10T09:00:00Z&to=2025-03-12", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := httptest.NewRequest(http.MethodGet, "/availability?"+tt.query, nil)
			got, err := parseAvailabilityWindow(r)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, domain.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Day.Equal(got.Day), "day = %s", got.Day)
			assert.True(t, tt.want.From.Equal(got.From), "from = %s", got.From)
			assert.True(t, tt.want.To.Equal(got.To), "to = %s", got.To)
		})
	}
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestGetPathUUID(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	r := withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", id.String())
	got, err := getPathUUID(r, "id")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	r = withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", "42")
	_, err = getPathUUID(r, "id")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
	assert.Equal(t, http.StatusBadRequest, MapErrorToStatusCode(err))

	_, err = getPathUUID(httptest.NewRequest(http.MethodGet, "/", nil), "id")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestRequireUserID(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	_, ok := requireUserID(w, httptest.NewRequest(http.MethodGet, "/", nil), slog.Default())
	assert.False(t, ok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	userID := uuid.New()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r = r.WithContext(context.WithValue(r.Context(), shared.UserIDContextKey, userID))
	w = httptest.NewRecorder()
	got, ok := requireUserID(w, r, slog.Default())
	assert.True(t, ok)
	assert.Equal(t, userID, got)
}
