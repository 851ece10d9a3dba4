package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"auctionScope/internal/model"
)

// AuctionProvider is the read interface the HTTP layer serves.
type AuctionProvider interface {
	ListAuctions(ctx context.Context) ([]model.Auction, error)
	GetAuction(ctx context.Context, index uint64) (model.Auction, error)
	GetBidHistory(ctx context.Context, index uint64) ([]model.Bid, error)
	Stats(ctx context.Context) (model.Stats, error)
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Server exposes the auction read API over HTTP.
type Server struct {
	service AuctionProvider
	logger  *zap.Logger
}

func NewServer(service AuctionProvider, logger *zap.Logger) (*Server, error) {
	if service == nil {
		return nil, errors.New("auction service is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{service: service, logger: logger}, nil
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", s.healthz)
	router.GET("/auctions", s.listAuctions)
	router.GET("/auctions/:id", s.getAuction)
	router.GET("/auctions/:id/bids", s.getBids)
	router.GET("/stats", s.getStats)

	return router
}

func (s *Server) healthz(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) listAuctions(ctx *gin.Context) {
	auctions, err := s.service.ListAuctions(ctx.Request.Context())
	if err != nil {
		s.logger.Error("list auctions failed", zap.Error(err))
		ctx.JSON(http.StatusBadGateway, ErrorResponse{Error: "ledger unavailable"})
		return
	}
	ctx.JSON(http.StatusOK, auctions)
}

func (s *Server) getAuction(ctx *gin.Context) {
	index, ok := parseIndex(ctx)
	if !ok {
		return
	}

	auction, err := s.service.GetAuction(ctx.Request.Context(), index)
	if err != nil {
		var notFound *model.NotFoundError
		if errors.As(err, &notFound) {
			ctx.JSON(http.StatusNotFound, ErrorResponse{Error: "auction not found"})
			return
		}
		s.logger.Error("get auction failed", zap.Uint64("auction", index), zap.Error(err))
		ctx.JSON(http.StatusBadGateway, ErrorResponse{Error: "ledger unavailable"})
		return
	}
	ctx.JSON(http.StatusOK, auction)
}

func (s *Server) getBids(ctx *gin.Context) {
	index, ok := parseIndex(ctx)
	if !ok {
		return
	}

	bids, err := s.service.GetBidHistory(ctx.Request.Context(), index)
	if err != nil {
		var notFound *model.NotFoundError
		if errors.As(err, &notFound) {
			ctx.JSON(http.StatusNotFound, ErrorResponse{Error: "auction not found"})
			return
		}
		s.logger.Error("get bid history failed", zap.Uint64("auction", index), zap.Error(err))
		ctx.JSON(http.StatusBadGateway, ErrorResponse{Error: "ledger unavailable"})
		return
	}
	ctx.JSON(http.StatusOK, bids)
}

func (s *Server) getStats(ctx *gin.Context) {
	stats, err := s.service.Stats(ctx.Request.Context())
	if err != nil {
		s.logger.Error("stats failed", zap.Error(err))
		ctx.JSON(http.StatusBadGateway, ErrorResponse{Error: "ledger unavailable"})
		return
	}
	ctx.JSON(http.StatusOK, stats)
}

func parseIndex(ctx *gin.Context) (uint64, bool) {
	index, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid auction id"})
		return 0, false
	}
	return index, true
}
