package kit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestMetricsAuth(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	cases := []struct {
		token  string
		header string
		want   int
	}{
		{"", "Bearer ", http.StatusForbidden},
		{"", "", http.StatusForbidden},
		{"secret", "", http.StatusForbidden},
		{"secret", "Bearer wrong", http.StatusForbidden},
		{"secret", "Basic secret", http.StatusForbidden},
		{"secret", "Bearer secret", http.StatusOK},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		rr := httptest.NewRecorder()
		MetricsAuth(tc.token)(ok).ServeHTTP(rr, req)
		if rr.Code != tc.want {
			t.Fatalf("token=%q header=%q: code=%d want %d", tc.token, tc.header, rr.Code, tc.want)
		}
	}
}

func TestClientMetrics_NilIsNoop(t *testing.T) {
	var m *ClientMetrics
	m.Observe("fetch", "ok", time.Millisecond)
}
