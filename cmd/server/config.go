package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"bboard/domain"
)

type Config struct {
	Host                 string        `env:"HOST,default=0.0.0.0"`
	Port                 int           `env:"PORT,default=8000"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=64"`
	BackfillCount        int           `env:"BACKFILL_COUNT,default=2"`
	SearchLimit          int           `env:"SEARCH_LIMIT,default=10"`
	CharReplacement      string        `env:"CHARACTER_REPLACEMENT,default=*"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	HealthInterval       time.Duration `env:"HEALTH_INTERVAL,default=30s"`
	LogLevel             string        `env:"LOG_LEVEL,default=INFO"`
	// GroupSet overrides the built-in topic list, e.g. "1:General,2:Gaming".
	GroupSet string `env:"GROUP_SET"`
}

const defaultGroupSet = "1:General,2:Tech Talk,3:Random,4:Help,5:Announcements"

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf("CHARACTER_REPLACEMENT must be a single character, got %q", str)
	}
	return r[0], nil
}

// ParseGroups turns an "id:name,..." list into the fixed startup group set.
func ParseGroups(list string) ([]*domain.Group, error) {
	if strings.TrimSpace(list) == "" {
		list = defaultGroupSet
	}

	var groups []*domain.Group
	seen := make(map[int]struct{})
	for _, pair := range strings.Split(list, ",") {
		idStr, name, found := strings.Cut(pair, ":")
		if !found {
			return nil, fmt.Errorf("group entry %q must be id:name", pair)
		}
		id, err := strconv.Atoi(strings.TrimSpace(idStr))
		if err != nil {
			return nil, fmt.Errorf("group entry %q has a non-numeric id", pair)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("duplicate group id %d", id)
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("group %d has an empty name", id)
		}
		seen[id] = struct{}{}
		groups = append(groups, domain.NewGroup(id, name))
	}
	return groups, nil
}
