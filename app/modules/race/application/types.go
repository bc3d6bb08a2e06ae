package raceservice

import "time"

// StartlistEntry is one rider of a startlist import.
type StartlistEntry struct {
	RiderName string `json:"rider_name"`
	Number    int    `json:"rider_number"`
	TeamName  string `json:"team_name"`
	Country   string `json:"nationality"`
}

// SubmittedFinisher is one finisher row as submitted by the scraper,
// identified by name; resolution to rider IDs happens during ingestion.
type SubmittedFinisher struct {
	RiderName string `json:"rider_name"`
	Position  int    `json:"position"`
	Gap       string `json:"gap,omitempty"`
}

// SubmitStageResultsRequest mirrors the scraper submission payload.
type SubmitStageResultsRequest struct {
	StageNumber   int                 `json:"stage_number"`
	Date          time.Time           `json:"date,omitempty"`
	DistanceKM    float64             `json:"distance,omitempty"`
	DepartureCity string              `json:"departure_city,omitempty"`
	ArrivalCity   string              `json:"arrival_city,omitempty"`
	StageType     string              `json:"stage_type,omitempty"`
	WonHow        string              `json:"won_how,omitempty"`
	WinningTeam   string              `json:"winning_team,omitempty"`
	Finishers     []SubmittedFinisher `json:"top_20_finishers"`
	Jerseys       map[string]string   `json:"jerseys"`
	Combativity   string              `json:"combativity,omitempty"`
	DNFRiders     []string            `json:"dnf_riders"`
	DNSRiders     []string            `json:"dns_riders"`
}

// IngestResult reports what a stage-fact submission stored, plus any
// data-quality warnings the lenient policy let through.
type IngestResult struct {
	StageNumber int      `json:"stage_number"`
	Finishers   int      `json:"finishers"`
	DNFCount    int      `json:"dnf_count"`
	DNSCount    int      `json:"dns_count"`
	Warnings    []string `json:"warnings,omitempty"`
}
