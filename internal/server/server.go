// Package server exposes an engine as a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rustyeddy/tradegame/market"
	"github.com/rustyeddy/tradegame/sim"
)

type Config struct {
	Addr   string
	Engine *sim.Engine
	Log    *slog.Logger
}

// HTTPServer serves the game API for any number of players.
type HTTPServer struct {
	addr   string
	engine *sim.Engine
	log    *slog.Logger
	router *gin.Engine
}

func New(cfg Config) (*HTTPServer, error) {
	if cfg.Engine == nil {
		return nil, errors.New("server: engine is required")
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &HTTPServer{
		addr:   cfg.Addr,
		engine: cfg.Engine,
		log:    cfg.Log,
		router: router,
	}
	s.registerRoutes()
	return s, nil
}

func (s *HTTPServer) registerRoutes() {
	api := s.router.Group("/api")
	api.GET("/instruments", s.handleInstruments)
	api.GET("/instruments/:instrument/price", s.handlePrice)

	p := api.Group("/players/:player")
	p.GET("", s.handlePlayer)
	p.GET("/max-order", s.handleMaxOrder)
	p.POST("/orders", s.handleOrder)
	p.POST("/advance", s.handleAdvance)
	p.GET("/series/:instrument", s.handleSeries)
}

// Handler returns the router, mainly for tests.
func (s *HTTPServer) Handler() http.Handler { return s.router }

// Start serves until ctx is done, then shuts down gracefully.
func (s *HTTPServer) Start(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.router, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	s.log.Info("http server listening", "addr", s.addr)

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shCtx)
	case err := <-errCh:
		return err
	}
}

type instrumentsResponse struct {
	Instruments []string `json:"instruments"`
	Horizon     int      `json:"horizon"`
}

func (s *HTTPServer) handleInstruments(c *gin.Context) {
	c.JSON(http.StatusOK, instrumentsResponse{
		Instruments: s.engine.Instruments(),
		Horizon:     s.engine.Horizon(),
	})
}

type priceResponse struct {
	Instrument string  `json:"instrument"`
	Day        int     `json:"day"`
	Price      float64 `json:"price"`
}

func (s *HTTPServer) handlePrice(c *gin.Context) {
	in := c.Param("instrument")
	day, err := strconv.Atoi(c.Query("day"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "day must be an integer"})
		return
	}
	p, err := s.engine.Price(in, day)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, priceResponse{Instrument: in, Day: day, Price: p})
}

type playerResponse struct {
	sim.LedgerSnapshot
	Valuation sim.Valuation `json:"valuation"`
}

func (s *HTTPServer) handlePlayer(c *gin.Context) {
	player := c.Param("player")
	s.writePlayer(c, player, http.StatusOK)
}

func (s *HTTPServer) writePlayer(c *gin.Context, player string, status int) {
	snap, v, err := s.engine.State(player)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(status, playerResponse{LedgerSnapshot: snap, Valuation: v})
}

type maxOrderResponse struct {
	Instrument string   `json:"instrument"`
	Side       sim.Side `json:"side"`
	Quantity   int      `json:"quantity"`
}

func (s *HTTPServer) handleMaxOrder(c *gin.Context) {
	player := c.Param("player")
	in := c.Query("instrument")
	side, err := sim.ParseSide(c.Query("side"))
	if err != nil {
		s.fail(c, err)
		return
	}
	n, err := s.engine.MaxOrder(player, in, side)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, maxOrderResponse{Instrument: in, Side: side, Quantity: n})
}

type orderRequest struct {
	Side       string `json:"side" binding:"required"`
	Instrument string `json:"instrument" binding:"required"`
	Quantity   int    `json:"quantity"`
}

func (s *HTTPServer) handleOrder(c *gin.Context) {
	player := c.Param("player")
	var req orderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	side, err := sim.ParseSide(req.Side)
	if err != nil {
		s.fail(c, err)
		return
	}

	if side == sim.Buy {
		err = s.engine.Buy(player, req.Instrument, req.Quantity)
	} else {
		err = s.engine.Sell(player, req.Instrument, req.Quantity)
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	s.writePlayer(c, player, http.StatusOK)
}

type advanceRequest struct {
	Days int `json:"days"`
}

type advanceResponse struct {
	Credited  float64       `json:"credited"`
	Valuation sim.Valuation `json:"valuation"`
}

func (s *HTTPServer) handleAdvance(c *gin.Context) {
	player := c.Param("player")
	var req advanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	credited, err := s.engine.AdvanceDays(player, req.Days)
	if err != nil {
		s.fail(c, err)
		return
	}
	v, err := s.engine.Valuation(player)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, advanceResponse{Credited: credited, Valuation: v})
}

type seriesResponse struct {
	Instrument string        `json:"instrument"`
	Day        int           `json:"day"`
	Candles    market.Series `json:"candles"`
}

func (s *HTTPServer) handleSeries(c *gin.Context) {
	player := c.Param("player")
	in := c.Param("instrument")
	series, err := s.engine.AvailableSeries(player, in)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, seriesResponse{Instrument: in, Day: series.Len(), Candles: series})
}

// fail writes err with the status its sentinel maps to.
func (s *HTTPServer) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, sim.ErrInvalidSide), errors.Is(err, sim.ErrInvalidQuantity):
		return http.StatusBadRequest
	case errors.Is(err, sim.ErrUnknownInstrument):
		return http.StatusNotFound
	case errors.Is(err, sim.ErrInsufficientFunds), errors.Is(err, sim.ErrInsufficientHoldings):
		return http.StatusUnprocessableEntity
	case errors.Is(err, sim.ErrOutOfRange):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
