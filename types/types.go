// Package types defines the shared data model for replay metadata decoding.
//
// Everything here is created fresh per decode invocation and treated as
// immutable once produced. Decoders return these values; they never mutate
// them afterwards.
package types

// OrderEvent is one recorded command event from a replay's command log,
// as produced by a replay.StreamReader. Consumed read-only.
type OrderEvent struct {
	// OrderID is the command identifier as recorded in the replay.
	OrderID string `json:"order_id" msgpack:"order_id"`
	// PlayerID is the acting entity.
	PlayerID int `json:"player_id" msgpack:"player_id"`
	// TimestampMS is monotonically non-decreasing within one player's
	// stream, but not necessarily sorted across players.
	TimestampMS int64 `json:"timestamp_ms" msgpack:"timestamp_ms"`
	// UnitID identifies the in-game unit the command was issued to.
	UnitID string `json:"unit_id" msgpack:"unit_id"`
}

// KillCounters holds per-animal kill counts from the payload stat block.
type KillCounters struct {
	Elk     int64 `json:"elk" yaml:"elk" msgpack:"elk"`
	Hawk    int64 `json:"hawk" yaml:"hawk" msgpack:"hawk"`
	Snake   int64 `json:"snake" yaml:"snake" msgpack:"snake"`
	Wolf    int64 `json:"wolf" yaml:"wolf" msgpack:"wolf"`
	Bear    int64 `json:"bear" yaml:"bear" msgpack:"bear"`
	Panther int64 `json:"panther" yaml:"panther" msgpack:"panther"`
}

// PlayerStats is the optional per-player stat block, present from payload
// schema v2 onward. Unparseable fields default to zero rather than failing
// the record.
type PlayerStats struct {
	DamageTroll  int64        `json:"damage_troll" yaml:"damage_troll" msgpack:"damage_troll"`
	SelfHealing  int64        `json:"self_healing" yaml:"self_healing" msgpack:"self_healing"`
	AllyHealing  int64        `json:"ally_healing" yaml:"ally_healing" msgpack:"ally_healing"`
	GoldAcquired int64        `json:"gold_acquired" yaml:"gold_acquired" msgpack:"gold_acquired"`
	MeatEaten    int64        `json:"meat_eaten" yaml:"meat_eaten" msgpack:"meat_eaten"`
	Kills        KillCounters `json:"kills" yaml:"kills" msgpack:"kills"`
}

// MatchPlayerMetadata is one decoded player record.
type MatchPlayerMetadata struct {
	SlotIndex int          `json:"slot_index" yaml:"slot_index" msgpack:"slot_index"`
	Name      string       `json:"name" yaml:"name" msgpack:"name"`
	Race      string       `json:"race" yaml:"race" msgpack:"race"`
	Team      int          `json:"team" yaml:"team" msgpack:"team"`
	Result    string       `json:"result" yaml:"result" msgpack:"result"`
	Stats     *PlayerStats `json:"stats,omitempty" yaml:"stats,omitempty" msgpack:"stats,omitempty"`
}

// MatchMetadata is the final decoded product of a payload.
type MatchMetadata struct {
	SchemaVersion   int                   `json:"schema_version" yaml:"schema_version" msgpack:"schema_version"`
	MapName         string                `json:"map_name" yaml:"map_name" msgpack:"map_name"`
	MapVersion      string                `json:"map_version" yaml:"map_version" msgpack:"map_version"`
	MatchID         string                `json:"match_id" yaml:"match_id" msgpack:"match_id"`
	StartTimeGame   float64               `json:"start_time_game" yaml:"start_time_game" msgpack:"start_time_game"`
	EndTimeGame     float64               `json:"end_time_game" yaml:"end_time_game" msgpack:"end_time_game"`
	DurationSeconds float64               `json:"duration_seconds" yaml:"duration_seconds" msgpack:"duration_seconds"`
	PlayerCount     int                   `json:"player_count" yaml:"player_count" msgpack:"player_count"`
	Players         []MatchPlayerMetadata `json:"players" yaml:"players" msgpack:"players"`
	Checksum        int64                 `json:"checksum" yaml:"checksum" msgpack:"checksum"`
	// Extras preserves unrecognized key:value lines verbatim for forward
	// compatibility with future payload fields.
	Extras map[string]string `json:"extras,omitempty" yaml:"extras,omitempty" msgpack:"extras,omitempty"`
}

// DecodeResult bundles the decoded metadata with the intermediate artifacts,
// so callers can audit what decoding path was taken.
type DecodeResult struct {
	Metadata *MatchMetadata `json:"metadata" msgpack:"metadata"`
	// Payload is the decoded plaintext document.
	Payload string `json:"payload" msgpack:"payload"`
	// Orders is the extracted order-id subsequence that spelled the payload.
	Orders []string `json:"orders" msgpack:"orders"`
	// SpecVersion is the codec spec version used for the decode.
	SpecVersion int `json:"spec_version" msgpack:"spec_version"`
}
