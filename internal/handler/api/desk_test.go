package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TradeDesk/internal/agents"
	"TradeDesk/internal/domain/models"
	"TradeDesk/internal/exchange"
	"TradeDesk/internal/llm"
	"TradeDesk/internal/repository"
	"TradeDesk/internal/usecase"
	applogger "TradeDesk/pkg/logger"
	"TradeDesk/pkg/metrics"
)

type staticMarket struct{}

func (staticMarket) GetSnapshot(_ context.Context, symbol string) (models.MarketSnapshot, error) {
	return models.MarketSnapshot{
		Symbol: symbol, Price: 100, Volume: 8_000_000,
		ChangePercent: 1, MarketCap: 1e10, PERatio: 20, Timestamp: time.Now(),
	}, nil
}

func (staticMarket) GetIndicators(_ context.Context, symbol string) (models.TechnicalIndicatorSet, error) {
	return models.TechnicalIndicatorSet{Symbol: symbol, RSI: 50, Timestamp: time.Now()}, nil
}

func newTestHandler(t *testing.T) (*DeskHandler, *echo.Echo) {
	t.Helper()
	log, err := applogger.New(&applogger.Config{Level: "error", Format: "console", Output: "stderr"})
	require.NoError(t, err)

	ex := exchange.New(nil, metrics.Noop{}, log)
	desk := usecase.NewDesk(staticMarket{}, ex, repository.NoopStore{}, repository.NoopSink{},
		metrics.Noop{}, llm.Static{}, log,
		usecase.WithAgentOptions(agents.WithSeed(11)),
		usecase.WithDiscussionRounds(1),
	)
	h := NewDeskHandler(log, desk, NewHub(log))

	e := echo.New()
	h.RegisterRoutes(e)
	return h, e
}

func TestAnalyzeAccepted(t *testing.T) {
	_, e := newTestHandler(t)

	body := `{"symbols":["AAPL","MSFT"]}`
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Status int `json:"status"`
		Data   struct {
			SessionID string   `json:"session_id"`
			Symbols   []string `json:"symbols"`
			Status    string   `json:"status"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusAccepted, resp.Status)
	assert.NotEmpty(t, resp.Data.SessionID)
	assert.Equal(t, []string{"AAPL", "MSFT"}, resp.Data.Symbols)
	assert.Equal(t, "running", resp.Data.Status)
}

func TestAnalyzeRejectsEmptySymbols(t *testing.T) {
	_, e := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(`{"symbols":[]}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Status int `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusBadRequest, resp.Status)
}

func TestAgentsListsRoster(t *testing.T) {
	_, e := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/agents", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []struct {
			Name string `json:"name"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 9)
	assert.Equal(t, "Fundamental Analyst", resp.Data[0].Name)
	assert.Equal(t, "Portfolio Manager", resp.Data[8].Name)
}

func TestPortfolioPerformanceEmptyLedger(t *testing.T) {
	_, e := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/portfolio/performance", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "no trades executed yet")
}

func TestHealth(t *testing.T) {
	_, e := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}
