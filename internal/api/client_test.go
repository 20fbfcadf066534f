package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/felixgeelhaar/rezai-admin/internal/domain"
	"github.com/felixgeelhaar/rezai-admin/internal/metrics"
	"github.com/felixgeelhaar/rezai-admin/internal/telemetry"
)

func staticToken(tok string) TokenFunc {
	return func(context.Context) string { return tok }
}

func TestLoginSendsNoBearer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/auth/login", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

		var body LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ada@rezai.io", body.Email)

		_, _ = io.WriteString(w, `{"data":{"user":{"_id":"u1","name":"Ada","role":"admin"},"token":"tok"}}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithToken(staticToken("stale")))
	resp, err := c.Login(context.Background(), "ada@rezai.io", "pw")
	require.NoError(t, err)
	require.NotNil(t, resp.User)
	assert.Equal(t, "Ada", resp.User.Name)
	assert.Equal(t, "tok", resp.Token)
}

func TestLoginErrorCarriesServerMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"message":"Invalid credentials"}`)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Login(context.Background(), "a", "b")
	require.Error(t, err)
	assert.Equal(t, "Invalid credentials", ServerMessage(err))

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestAuthenticatedRequestsCarryBearer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `{"data":[{"_id":"u1","name":"Ada"},{"_id":"u2","name":"Bo"}]}`)
	}))
	defer srv.Close()

	users, err := NewClient(srv.URL, WithToken(staticToken("tok"))).ListUsers(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestRequestWithoutTokenStillFires(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `{"data":[]}`)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, WithToken(staticToken(""))).ListRecipes(context.Background())
	require.NoError(t, err)
	assert.True(t, called)
}

func TestDeleteUserFlaggedErrorOn2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "DELETE", r.Method)
		assert.Equal(t, "/auth/u1", r.URL.Path)
		_, _ = io.WriteString(w, `{"error":true,"msg":"Cannot delete an admin"}`)
	}))
	defer srv.Close()

	err := NewClient(srv.URL).DeleteUser(context.Background(), "u1")
	require.Error(t, err)
	assert.Equal(t, "Cannot delete an admin", ServerMessage(err))
}

func TestListAnswersQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/answers", r.URL.Path)
		assert.Equal(t, "1000", r.URL.Query().Get("limit"))
		assert.Equal(t, "q7", r.URL.Query().Get("questionId"))
		_, _ = io.WriteString(w, `{"data":null}`)
	}))
	defer srv.Close()

	answers, err := NewClient(srv.URL).ListAnswers(context.Background(), "q7")
	require.NoError(t, err)
	assert.Empty(t, answers)
}

func TestQuestionMutations(t *testing.T) {
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Method+" "+r.URL.Path)
		switch r.Method {
		case "POST", "PUT":
			var in domain.QuestionInput
			require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			assert.Equal(t, domain.QuestionTypeSingle, in.QuestionType)
			assert.Len(t, in.Options, 2)
			_, _ = io.WriteString(w, `{"data":{"_id":"q1","text":"`+in.Text+`","options":["A","B"]}}`)
		case "DELETE":
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithToken(staticToken("tok")))
	in := domain.QuestionInput{Text: "Spicy?", QuestionType: domain.QuestionTypeSingle, IsLive: true, Options: []domain.Option{{Label: "A"}, {Label: "B"}}}

	created, err := c.CreateQuestion(context.Background(), in)
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, "Spicy?", created.Text)
	assert.Equal(t, "A", created.Options[0].Label)

	_, err = c.UpdateQuestion(context.Background(), "q1", in)
	require.NoError(t, err)
	require.NoError(t, c.DeleteQuestion(context.Background(), "q1"))

	assert.Equal(t, []string{"POST /questions", "PUT /questions/q1", "DELETE /questions/q1"}, seen)
}

func TestDashboardStats(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"data":{"totalQuestions":12,"newQuestionsWeek":3,"totalUsers":1500,"newUsersWeek":0}}`)
	}))
	defer srv.Close()

	stats, err := NewClient(srv.URL).DashboardStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12, stats.TotalQuestions)
	assert.Equal(t, 1500, stats.TotalUsers)
}

func TestStatusErrorWithoutJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "upstream down")
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).ListQuestions(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
	assert.Equal(t, "", ServerMessage(err))
}

func TestMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"data":[{"_id":1}]}`)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).ListUsers(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode response")
}

func TestNetworkErrorAndMetrics(t *testing.T) {
	_, m := metrics.NewRegistry()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, WithMetrics(m)).ListUsers(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to perform request")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.APIErrors.WithLabelValues("GET", "/admin/users", "network")))
}

func TestMetricsUseRouteTemplate(t *testing.T) {
	_, m := metrics.NewRegistry()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"data":{}}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithMetrics(m))
	require.NoError(t, c.DeleteQuestion(context.Background(), "a"))
	require.NoError(t, c.DeleteQuestion(context.Background(), "b"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.APIRequests.WithLabelValues("DELETE", "/questions/:id", "200")))
}

func TestBaseURLTrimsSlash(t *testing.T) {
	assert.Equal(t, "http://api.local", NewClient("http://api.local/").BaseURL())
}

func TestTracingRecordsSpanAndPropagates(t *testing.T) {
	exp := tracetest.NewInMemoryExporter()
	cfg := telemetry.DefaultConfig()
	cfg.Enabled = true
	p, err := telemetry.NewProvider(context.Background(), cfg,
		telemetry.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exp)))
	require.NoError(t, err)
	defer p.Shutdown(context.Background())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("traceparent"))
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"message":"Question not found"}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithTracerProvider(p.TracerProvider()))
	require.Error(t, c.DeleteQuestion(context.Background(), "q1"))

	var names []string
	for _, s := range exp.GetSpans() {
		names = append(names, s.Name)
		if s.Name == "DELETE /questions/:id" {
			assert.Equal(t, codes.Error, s.Status.Code)
		}
	}
	assert.Contains(t, names, "DELETE /questions/:id")
}
