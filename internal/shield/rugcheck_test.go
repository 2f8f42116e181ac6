package shield

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"tokenradar/internal/domain"
)

func rugcheckServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/v1/tokens/mint123/report")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestRugcheckDangerRisk(t *testing.T) {
	server := rugcheckServer(t, http.StatusOK,
		`{"score_normalised":10,"riskLevel":"warn","risks":[
			{"name":"Freeze Authority","description":"freeze authority still enabled","level":"danger"}
		]}`)

	v := NewRugcheckTier(server.URL, testGovernor()).Evaluate(context.Background(), testCandidate(), nil)
	assert.Equal(t, domain.LevelDanger, v.Level)
	assert.Contains(t, v.Reason, "Freeze Authority")
}

func TestRugcheckBadRiskLevel(t *testing.T) {
	server := rugcheckServer(t, http.StatusOK, `{"score_normalised":20,"riskLevel":"honeypot","risks":[]}`)

	v := NewRugcheckTier(server.URL, testGovernor()).Evaluate(context.Background(), testCandidate(), nil)
	assert.Equal(t, domain.LevelDanger, v.Level)
}

func TestRugcheckHighScore(t *testing.T) {
	server := rugcheckServer(t, http.StatusOK, `{"score_normalised":85,"riskLevel":"warn","risks":[]}`)

	v := NewRugcheckTier(server.URL, testGovernor()).Evaluate(context.Background(), testCandidate(), nil)
	assert.Equal(t, domain.LevelDanger, v.Level)
}

func TestRugcheckMidScoreWarns(t *testing.T) {
	server := rugcheckServer(t, http.StatusOK, `{"score_normalised":55,"riskLevel":"warn","risks":[]}`)

	v := NewRugcheckTier(server.URL, testGovernor()).Evaluate(context.Background(), testCandidate(), nil)
	assert.Equal(t, domain.LevelWarning, v.Level)
}

func TestRugcheckCleanReport(t *testing.T) {
	server := rugcheckServer(t, http.StatusOK, `{"score_normalised":5,"riskLevel":"good","risks":[]}`)

	v := NewRugcheckTier(server.URL, testGovernor()).Evaluate(context.Background(), testCandidate(), nil)
	assert.Equal(t, domain.LevelOK, v.Level)
}

func TestRugcheckNotIndexedYet(t *testing.T) {
	server := rugcheckServer(t, http.StatusNotFound, `{"error":"not found"}`)

	v := NewRugcheckTier(server.URL, testGovernor()).Evaluate(context.Background(), testCandidate(), nil)
	assert.Equal(t, domain.LevelOK, v.Level, "fresh tokens are not indexed yet, that is not a failure")
}

func TestRugcheckOutageFailsOpen(t *testing.T) {
	server := rugcheckServer(t, http.StatusInternalServerError, ``)

	v := NewRugcheckTier(server.URL, testGovernor()).Evaluate(context.Background(), testCandidate(), nil)
	assert.Equal(t, domain.LevelUnknown, v.Level)
}
