// Package payload implements the structural parser for the decoded
// metadata document.
//
// The payload is line-oriented text: a v<schemaVersion> header, key:value
// lines, one player: line per player, a checksum: line, and an END
// terminator. Every line preceding the checksum line participates in the
// checksum input in its original order, header included.
package payload

import (
	"strconv"
	"strings"

	"github.com/N1teshift/replay-meta/checksum"
	"github.com/N1teshift/replay-meta/spec"
	"github.com/N1teshift/replay-meta/types"
)

// requiredFields are the top-level keys every payload must carry.
var requiredFields = []string{
	"mapName",
	"mapVersion",
	"matchId",
	"duration",
	"startTime",
	"endTime",
	"playerCount",
}

// Options control payload parsing.
type Options struct {
	// SkipChecksum bypasses integrity verification. Recovery and debugging
	// tooling only; never set on the default decode path.
	SkipChecksum bool
}

// Parse turns a decoded payload string into MatchMetadata.
// The checksum gate runs before any field interpretation; parsing never
// proceeds past a mismatch unless opts.SkipChecksum is set.
func Parse(text string, codec *spec.Codec, opts Options) (*types.MatchMetadata, error) {
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(normalized, "\n")

	schemaVersion, err := parseSchemaVersion(lines[0])
	if err != nil {
		return nil, err
	}

	beforeChecksum := []string{lines[0]}
	players := make([]types.MatchPlayerMetadata, 0, 12)
	keyValues := make(map[string]string)

	var checksumValue int64
	checksumSeen := false
	endSeen := false

	for _, line := range lines[1:] {
		if strings.HasPrefix(line, "checksum:") {
			raw := strings.TrimSpace(line[len("checksum:"):])
			v, perr := strconv.ParseInt(raw, 10, 64)
			if perr != nil {
				return nil, types.NewError(types.CodePayloadInvalid, "invalid checksum value").
					WithDetails(map[string]any{"value": raw}).WithCause(perr)
			}
			checksumValue = v
			checksumSeen = true
			continue
		}

		if !checksumSeen {
			beforeChecksum = append(beforeChecksum, line)
		}

		if line == "" {
			continue
		}

		if line == "END" {
			endSeen = true
			continue
		}

		if strings.HasPrefix(line, "player:") {
			player, perr := parsePlayerLine(line, schemaVersion)
			if perr != nil {
				return nil, perr
			}
			players = append(players, player)
			continue
		}

		idx := strings.Index(line, ":")
		if idx <= 0 {
			return nil, types.NewErrorf(types.CodePayloadInvalid, "invalid key/value line: %s", line)
		}
		// Everything after the first colon is the value, further colons
		// included.
		keyValues[line[:idx]] = line[idx+1:]
	}

	if !checksumSeen {
		return nil, types.NewError(types.CodePayloadInvalid, "payload missing checksum line")
	}
	if !endSeen {
		return nil, types.NewError(types.CodePayloadInvalid, "payload missing END terminator")
	}

	if !opts.SkipChecksum {
		if err := checksum.Verify(strings.Join(beforeChecksum, "\n"), checksumValue, codec); err != nil {
			return nil, err
		}
	}

	require := func(key string) (string, error) {
		value, ok := keyValues[key]
		if !ok {
			return "", types.NewErrorf(types.CodePayloadInvalid, "missing field %s", key).
				WithDetails(map[string]any{"field": key})
		}
		return value, nil
	}

	mapName, err := require("mapName")
	if err != nil {
		return nil, err
	}
	mapVersion, err := require("mapVersion")
	if err != nil {
		return nil, err
	}
	matchID, err := require("matchId")
	if err != nil {
		return nil, err
	}
	duration, err := requireNumber(keyValues, "duration")
	if err != nil {
		return nil, err
	}
	startTime, err := requireNumber(keyValues, "startTime")
	if err != nil {
		return nil, err
	}
	endTime, err := requireNumber(keyValues, "endTime")
	if err != nil {
		return nil, err
	}
	playerCountRaw, err := require("playerCount")
	if err != nil {
		return nil, err
	}
	playerCount, perr := strconv.Atoi(strings.TrimSpace(playerCountRaw))
	if perr != nil {
		return nil, types.NewError(types.CodePayloadInvalid, "invalid numeric value for playerCount").
			WithDetails(map[string]any{"field": "playerCount", "value": playerCountRaw}).WithCause(perr)
	}

	if playerCount != len(players) {
		return nil, types.NewError(types.CodePayloadInvalid, "player count mismatch").
			WithDetails(map[string]any{"expected": playerCount, "actual": len(players)})
	}

	extras := make(map[string]string)
	for key, value := range keyValues {
		if !isRequiredField(key) {
			extras[key] = value
		}
	}

	return &types.MatchMetadata{
		SchemaVersion:   schemaVersion,
		MapName:         mapName,
		MapVersion:      mapVersion,
		MatchID:         matchID,
		StartTimeGame:   startTime,
		EndTimeGame:     endTime,
		DurationSeconds: duration,
		PlayerCount:     playerCount,
		Players:         players,
		Checksum:        checksumValue,
		Extras:          extras,
	}, nil
}

func parseSchemaVersion(line string) (int, error) {
	if !strings.HasPrefix(line, "v") {
		return 0, types.NewError(types.CodePayloadInvalid, "missing schema version header")
	}
	version, err := strconv.Atoi(line[1:])
	if err != nil {
		return 0, types.NewError(types.CodePayloadInvalid, "invalid schema version header").
			WithDetails(map[string]any{"header": line}).WithCause(err)
	}
	return version, nil
}

// parsePlayerLine parses one player: line.
//
// Schema < 3:  slot|name|race|team|result|<16 stat fields total>
// Schema >= 3: slot|name|race|class|team|result|<17 fields total>
// The class value is reserved and currently discarded.
func parsePlayerLine(line string, schemaVersion int) (types.MatchPlayerMetadata, error) {
	parts := strings.Split(line[len("player:"):], "|")
	if len(parts) < 5 {
		return types.MatchPlayerMetadata{}, types.NewErrorf(types.CodePayloadInvalid, "invalid player line: %s", line).
			WithDetails(map[string]any{"fields": len(parts)})
	}

	hasClass := schemaVersion >= 3

	var slot, name, race, team, result string
	var statsOffset int
	if hasClass {
		// The class field shifts team and result right by one.
		if len(parts) < 6 {
			return types.MatchPlayerMetadata{}, types.NewErrorf(types.CodePayloadInvalid, "invalid player line: %s", line).
				WithDetails(map[string]any{"fields": len(parts)})
		}
		slot, name, race, team, result = parts[0], parts[1], parts[2], parts[4], parts[5]
		statsOffset = 6
	} else {
		slot, name, race, team, result = parts[0], parts[1], parts[2], parts[3], parts[4]
		statsOffset = 5
	}

	slotIndex, serr := strconv.Atoi(slot)
	teamID, terr := strconv.Atoi(team)
	if serr != nil || terr != nil {
		return types.MatchPlayerMetadata{}, types.NewErrorf(types.CodePayloadInvalid, "invalid player numbers in line: %s", line).
			WithDetails(map[string]any{"slot": slot, "team": team})
	}

	player := types.MatchPlayerMetadata{
		SlotIndex: slotIndex,
		Name:      name,
		Race:      race,
		Team:      teamID,
		Result:    result,
	}

	// Stats attach only when the full stat block is present: 16 fields for
	// pre-v3 lines, 17 for v3+. Individual fields that fail to parse
	// default to zero instead of aborting the record.
	minFieldsForStats := 16
	if hasClass {
		minFieldsForStats = 17
	}
	if len(parts) >= minFieldsForStats {
		player.Stats = &types.PlayerStats{
			DamageTroll:  statField(parts, statsOffset),
			SelfHealing:  statField(parts, statsOffset+1),
			AllyHealing:  statField(parts, statsOffset+2),
			GoldAcquired: statField(parts, statsOffset+3),
			MeatEaten:    statField(parts, statsOffset+4),
			Kills: types.KillCounters{
				Elk:     statField(parts, statsOffset+5),
				Hawk:    statField(parts, statsOffset+6),
				Snake:   statField(parts, statsOffset+7),
				Wolf:    statField(parts, statsOffset+8),
				Bear:    statField(parts, statsOffset+9),
				Panther: statField(parts, statsOffset+10),
			},
		}
	}

	return player, nil
}

func statField(parts []string, index int) int64 {
	if index >= len(parts) {
		return 0
	}
	v, err := strconv.ParseFloat(parts[index], 64)
	if err != nil {
		return 0
	}
	return int64(v)
}

func requireNumber(keyValues map[string]string, key string) (float64, error) {
	value, ok := keyValues[key]
	if !ok {
		return 0, types.NewErrorf(types.CodePayloadInvalid, "missing field %s", key).
			WithDetails(map[string]any{"field": key})
	}
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, types.NewErrorf(types.CodePayloadInvalid, "invalid numeric value for %s", key).
			WithDetails(map[string]any{"field": key, "value": value}).WithCause(err)
	}
	return parsed, nil
}

func isRequiredField(key string) bool {
	for _, f := range requiredFields {
		if key == f {
			return true
		}
	}
	return false
}
