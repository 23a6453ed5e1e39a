// Package seed generates synthetic athlete profiles against a running
// service and verifies the star ratings it computes.
package seed

import (
	"errors"
	"time"
)

// ErrVerification is returned when the service disagrees with the local
// rating engine.
var ErrVerification = errors.New("rating verification failed")

// Config holds configuration for a seeding run.
type Config struct {
	BaseURL     string        // Base URL of the service
	Secret      string        // HMAC secret used to mint owner tokens
	NumAthletes int           // Number of profiles to create
	Workers     int           // Number of concurrent requests
	Timeout     time.Duration // HTTP request timeout
	TopN        int           // Listing page size checked for ordering
	Seed        uint64        // Generator seed; zero picks a random one
	OutputFile  string        // Optional JSON dump of generated drafts
	Verbose     bool
}

// Profile is one generated athlete together with its owner.
type Profile struct {
	UserID string `json:"userId"`
	Draft  Draft  `json:"draft"`
}

// Draft mirrors the POST /api/v1/athletes body.
type Draft struct {
	FirstName        string  `json:"firstName"`
	LastName         string  `json:"lastName"`
	PrimarySport     string  `json:"primarySport"`
	IsPublic         bool    `json:"isPublic"`
	Hometown         string  `json:"hometown,omitempty"`
	GraduationYear   int     `json:"graduationYear,omitempty"`
	PerformanceScore float64 `json:"performanceScore"`
	PhysicalScore    float64 `json:"physicalScore"`
	AcademicScore    float64 `json:"academicScore"`
	SocialScore      float64 `json:"socialScore"`
	EvaluationScore  float64 `json:"evaluationScore"`
}

// Stats holds run statistics.
type Stats struct {
	Generated  int
	Created    int
	Conflicts  int
	Failed     int
	Verified   int
	Mismatches int
	ByStars    map[float64]int
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
}
