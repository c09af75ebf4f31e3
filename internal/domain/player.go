package domain

import "time"

// Player is a stable internal identity for an external (Discord) user.
type Player struct {
	ID        string    `json:"player_id"`
	DiscordID string    `json:"discord_id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}
