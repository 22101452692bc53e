package model

import "time"

// PointsEvent is a points increment published for a user after a deposit
type PointsEvent struct {
	UserID int64
	Points int
	Kg     float64
}

// PointsTotal accumulates the points events seen for one user
type PointsTotal struct {
	UserID    int64     `json:"user_id"`
	Points    int       `json:"points"`
	Kg        float64   `json:"kg"`
	Events    int       `json:"events"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LeaderboardEntry is one ranked consumer
type LeaderboardEntry struct {
	Rank   int    `json:"rank"`
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
	Points int    `json:"points"`
}
