// Social-activity models: follows, the per-day "grass" activity counters
// behind the profile heatmap, and the accumulated experience total that
// drives user levels.
package domain

import "time"

// Follow records that FromUser follows ToUser. Toggle semantics, one row per
// direction.
type Follow struct {
	ID       uint   `json:"id"        gorm:"primaryKey"`
	FromUser string `json:"from_user" gorm:"type:varchar(64);not null;uniqueIndex:ux_follow_pair,priority:1;index"`
	ToUser   string `json:"to_user"   gorm:"type:varchar(64);not null;uniqueIndex:ux_follow_pair,priority:2;index"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for Follow.
func (Follow) TableName() string { return "follows" }

// GrassDaily accumulates activity points for one user on one calendar day
// (date stored as "2006-01-02"). Points are raw totals; display capping and
// bucketing happen at read time.
type GrassDaily struct {
	ID     uint   `json:"id"      gorm:"primaryKey"`
	UserID string `json:"user_id" gorm:"type:varchar(64);not null;uniqueIndex:ux_grass_user_date,priority:1;index"`
	Date   string `json:"date"    gorm:"type:varchar(10);not null;uniqueIndex:ux_grass_user_date,priority:2"`
	Points int    `json:"points"  gorm:"not null;default:0"`

	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for GrassDaily.
func (GrassDaily) TableName() string { return "grass_daily" }

// UserStat holds per-user aggregates that outlive any single content row;
// currently just the lifetime experience total used for levels.
type UserStat struct {
	ID       uint   `json:"id"        gorm:"primaryKey"`
	UserID   string `json:"user_id"   gorm:"type:varchar(64);not null;uniqueIndex:ux_user_stats_user"`
	ExpTotal int    `json:"exp_total" gorm:"not null;default:0"`

	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for UserStat.
func (UserStat) TableName() string { return "user_stats" }
