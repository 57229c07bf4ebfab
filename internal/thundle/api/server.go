package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"thundle/internal/thundle/dailycache"
	"thundle/internal/thundle/helper"
	"thundle/internal/thundle/model"
	"thundle/internal/thundle/picker"
)

type Server struct {
	Log    *zap.Logger
	Stores *helper.Stores
	Cache  *dailycache.Cache
}

func (s *Server) Router() *gin.Engine {
	r := gin.Default()
	r.GET("/", s.root)
	r.GET("/random", s.randomVehicle) // ?mode=all&game=blur
	r.GET("/historic", s.historic)
	r.GET("/cached_dates", s.cachedDates)
	r.GET("/names", s.listNames)
	r.GET("/vehicles", s.listVehicles)
	return r
}

func (s *Server) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "thundle api"})
}

// pickKey validates the mode and game query parameters. Everything below the
// handlers assumes validated keys, so reject here.
func pickKey(c *gin.Context) (mode, game string, offsetYears int, ok bool) {
	mode = c.DefaultQuery("mode", model.ModeKeyAll)
	game = c.DefaultQuery("game", "blur")
	if !model.ValidModeKey(mode) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid mode: " + mode})
		return "", "", 0, false
	}
	offsetYears, valid := model.GameOffset(game)
	if !valid {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid game: " + game})
		return "", "", 0, false
	}
	return mode, game, offsetYears, true
}

// randomVehicle serves today's pick for (mode, game). The first request of
// the day materializes the pick; every later request gets the cached entry.
func (s *Server) randomVehicle(c *gin.Context) {
	mode, game, offsetYears, ok := pickKey(c)
	if !ok {
		return
	}

	pick, err := s.Cache.Lookup(c, dailycache.Today(), mode, game)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if pick != nil {
		c.JSON(http.StatusOK, pick.Vehicle)
		return
	}

	vehicles, err := s.vehiclesForMode(c, mode)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	idx, err := picker.PickIndex(len(vehicles), offsetYears)
	if errors.Is(err, model.ErrEmptyVehicleSet) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no data available"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	stored, err := s.Cache.Store(c, vehicles[idx], mode, game)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stored.Vehicle)
}

// historic returns the archived pick(s) for an explicit date.
func (s *Server) historic(c *gin.Context) {
	mode, game, _, ok := pickKey(c)
	if !ok {
		return
	}
	date := c.Query("date")
	if date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date is required"})
		return
	}

	picks, err := s.Cache.Archive(c, date, mode, game)
	if errors.Is(err, model.ErrInvalidKey) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	vehicles := make([]model.Vehicle, 0, len(picks))
	for _, p := range picks {
		vehicles = append(vehicles, p.Vehicle)
	}
	c.JSON(http.StatusOK, vehicles)
}

// cachedDates lists every day an answer exists for (mode, game).
func (s *Server) cachedDates(c *gin.Context) {
	mode, game, _, ok := pickKey(c)
	if !ok {
		return
	}

	picks, err := s.Cache.Archive(c, "", mode, game)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	dates := make([]string, 0, len(picks))
	for _, p := range picks {
		dates = append(dates, p.Date)
	}
	c.JSON(http.StatusOK, dates)
}

func (s *Server) listNames(c *gin.Context) {
	mode, _, _, ok := pickKey(c)
	if !ok {
		return
	}

	cur, err := s.Stores.Vehicles.Find(c, modeFilter(mode),
		options.Find().SetProjection(bson.M{"_id": 1, "name": 1}).SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer cur.Close(c)

	names := make([]model.VehicleOption, 0)
	for cur.Next(c) {
		var opt model.VehicleOption
		if err := cur.Decode(&opt); err != nil {
			s.Log.Error("Failed to decode vehicle option", zap.Error(err))
			continue
		}
		names = append(names, opt)
	}
	c.JSON(http.StatusOK, names)
}

func (s *Server) listVehicles(c *gin.Context) {
	mode, _, _, ok := pickKey(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if limit <= 0 || limit > 200 {
		limit = 10
	}

	cur, err := s.Stores.Vehicles.Find(c, modeFilter(mode),
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}).SetLimit(int64(limit)))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer cur.Close(c)

	vehicles := make([]model.Vehicle, 0, limit)
	for cur.Next(c) {
		var v model.Vehicle
		if err := cur.Decode(&v); err != nil {
			s.Log.Error("Failed to decode vehicle", zap.Error(err))
			continue
		}
		vehicles = append(vehicles, v)
	}
	c.JSON(http.StatusOK, vehicles)
}

func modeFilter(mode string) bson.M {
	if mode == model.ModeKeyAll {
		return bson.M{}
	}
	return bson.M{"mode": mode}
}

// vehiclesForMode loads the refined set scoped to a mode, in a stable order
// so the deterministic index lands on the same vehicle for a fixed set.
func (s *Server) vehiclesForMode(ctx context.Context, mode string) ([]model.Vehicle, error) {
	cur, err := s.Stores.Vehicles.Find(ctx, modeFilter(mode),
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var vehicles []model.Vehicle
	for cur.Next(ctx) {
		var v model.Vehicle
		if err := cur.Decode(&v); err != nil {
			s.Log.Error("Failed to decode vehicle", zap.Error(err))
			continue
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, cur.Err()
}
