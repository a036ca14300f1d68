package api

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"

	"TradeDesk/internal/usecase"
	xhttp "TradeDesk/pkg/http"
	applogger "TradeDesk/pkg/logger"
)

// AnalyzeRequest starts one trading session over a symbol list.
type AnalyzeRequest struct {
	Symbols []string `json:"symbols" validate:"required,min=1,max=50,dive,required"`
}

type analyzeAccepted struct {
	SessionID string   `json:"session_id"`
	Symbols   []string `json:"symbols"`
	Status    string   `json:"status"`
}

type agentInfo struct {
	Name          string `json:"name"`
	TotalOpinions int    `json:"total_opinions"`
}

// DeskHandler exposes the desk over HTTP.
type DeskHandler struct {
	logger *applogger.Logger
	desk   *usecase.Desk
	hub    *Hub
}

func NewDeskHandler(logger *applogger.Logger, desk *usecase.Desk, hub *Hub) *DeskHandler {
	return &DeskHandler{logger: logger, desk: desk, hub: hub}
}

func (h *DeskHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/analyze", h.Analyze)
	g.GET("/agents", h.Agents)
	g.GET("/agents/performance", h.AgentPerformance)
	g.GET("/portfolio/performance", h.PortfolioPerformance)
	g.GET("/health", h.Health)
	e.GET("/ws", h.hub.Serve)
}

// Analyze accepts a symbol list and runs the session in the background.
// Progress streams over the websocket; the response carries the id to
// correlate events with.
func (h *DeskHandler) Analyze(c echo.Context) error {
	req := &AnalyzeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	sessionID := usecase.NewSessionID()
	go func() {
		defer func() {
			if r := recover(); r != nil {
				h.logger.Error("session run panic", applogger.Any("panic", r))
			}
		}()
		h.desk.RunSessionWithID(context.Background(), sessionID, req.Symbols)
	}()

	h.logger.Info("session accepted",
		applogger.String("session_id", sessionID),
		applogger.Strings("symbols", req.Symbols),
	)
	return xhttp.AcceptedResponse(c, analyzeAccepted{
		SessionID: sessionID,
		Symbols:   req.Symbols,
		Status:    "running",
	})
}

// Agents lists the desk roster in discussion order.
func (h *DeskHandler) Agents(c echo.Context) error {
	roster := h.desk.Agents()
	out := make([]agentInfo, 0, len(roster))
	for _, a := range roster {
		out = append(out, agentInfo{Name: a.Name(), TotalOpinions: len(a.History())})
	}
	return xhttp.SuccessResponse(c, out)
}

// AgentPerformance summarizes per-agent opinion history.
func (h *DeskHandler) AgentPerformance(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.desk.AgentPerformance())
}

// PortfolioPerformance aggregates the exchange ledger.
func (h *DeskHandler) PortfolioPerformance(c echo.Context) error {
	perf := h.desk.PortfolioPerformance()
	if perf.TotalTrades == 0 {
		return xhttp.SuccessResponse(c, map[string]string{"message": "no trades executed yet"})
	}
	return xhttp.SuccessResponse(c, perf)
}

func (h *DeskHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"status":     "ok",
		"agents":     len(h.desk.Agents()),
		"ws_clients": h.hub.Clients(),
		"time":       time.Now().UTC(),
	})
}
