package domain

import (
	"fmt"
	"strings"
)

// Hives recognized in install-check path specs.
const (
	HiveClassesRoot   = "HKEY_CLASSES_ROOT"
	HiveCurrentUser   = "HKEY_CURRENT_USER"
	HiveLocalMachine  = "HKEY_LOCAL_MACHINE"
	HiveUsers         = "HKEY_USERS"
	HiveCurrentConfig = "HKEY_CURRENT_CONFIG"
)

var knownHives = map[string]struct{}{
	HiveClassesRoot:   {},
	HiveCurrentUser:   {},
	HiveLocalMachine:  {},
	HiveUsers:         {},
	HiveCurrentConfig: {},
}

// KeyPath is a parsed registry-style path spec of the shape
// "[HIVE\Sub\Key]\ValueName".
type KeyPath struct {
	Hive  string
	Key   string
	Value string
}

// ParseKeyPath splits a path spec on the first "]" to separate the
// bracketed key path from the trailing value name. The bracketed part
// needs at least a hive and one subkey segment.
func ParseKeyPath(spec string) (KeyPath, error) {
	key, value, ok := strings.Cut(spec, "]")
	if !ok {
		return KeyPath{}, fmt.Errorf("path spec %q has no bracketed key", spec)
	}
	key = strings.TrimPrefix(key, "[")
	value = strings.TrimPrefix(value, `\`)

	segments := strings.Split(key, `\`)
	if len(segments) < 2 {
		return KeyPath{}, fmt.Errorf("path spec %q has fewer than 2 key segments", spec)
	}

	hive := strings.ToUpper(segments[0])
	if _, ok := knownHives[hive]; !ok {
		return KeyPath{}, fmt.Errorf("path spec %q has unknown hive %q", spec, segments[0])
	}

	return KeyPath{
		Hive:  hive,
		Key:   strings.Join(segments[1:], `\`),
		Value: value,
	}, nil
}
