package domain

import "time"

type Attraction struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	CulturalValue int32     `json:"culturalValue"`
	CreatedAt     time.Time `json:"createdAt"`
	Version       int32     `json:"-"`
}
