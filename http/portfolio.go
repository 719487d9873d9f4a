package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/glbter/stock-portfolio/entities"
	"github.com/glbter/stock-portfolio/portfolio"
)

const (
	maxBodySize = 1 << 20

	internalErrorMessage = "An internal server error occurred"
)

type PortfolioHandler struct {
	Logger  *zap.Logger
	Service *portfolio.Service
}

type errorResp struct {
	Error string `json:"error"`
}

type historyResp struct {
	History []entities.HistoryPoint `json:"history"`
}

func (h PortfolioHandler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, h.Logger, http.StatusOK, map[string]string{"status": "healthy"})
}

func (h PortfolioHandler) Strategies(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, h.Logger, http.StatusOK, map[string][]entities.StrategyName{
		"strategies": h.Service.Strategies(),
	})
}

func (h PortfolioHandler) GeneratePortfolio(w http.ResponseWriter, r *http.Request) {
	cid := uuid.New().String()
	logger := h.Logger.With(zap.String("method", "GeneratePortfolio"), zap.String("cid", cid))

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		logger.Error(fmt.Errorf("read body: %w", err).Error())
		writeJSON(w, logger, http.StatusInternalServerError, errorResp{Error: internalErrorMessage})
		return
	}

	req, err := h.Service.ParseRequest(body)
	if err != nil {
		var verr *portfolio.ValidationError
		if errors.As(err, &verr) {
			logger.Info("invalid request", zap.String("reason", verr.Message))
			writeJSON(w, logger, http.StatusBadRequest, errorResp{Error: verr.Message})
			return
		}

		logger.Error(fmt.Errorf("parse request: %w", err).Error())
		writeJSON(w, logger, http.StatusInternalServerError, errorResp{Error: internalErrorMessage})
		return
	}

	res, err := h.Service.Generate(r.Context(), cid, req)
	if err != nil {
		logger.Error(fmt.Errorf("generate portfolio: %w", err).Error())
		writeJSON(w, logger, http.StatusInternalServerError, errorResp{Error: internalErrorMessage})
		return
	}

	writeJSON(w, logger, http.StatusOK, res)
}

func (h PortfolioHandler) History(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "portfolioID")
	if unescaped, err := url.PathUnescape(id); err == nil {
		id = unescaped
	}

	writeJSON(w, h.Logger, http.StatusOK, historyResp{History: h.Service.History(id)})
}

func writeJSON(w http.ResponseWriter, logger *zap.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error(fmt.Errorf("encode response: %w", err).Error())
	}
}
