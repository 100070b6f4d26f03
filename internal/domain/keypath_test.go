package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKeyPath(t *testing.T) {
	parsed, err := ParseKeyPath(`[HKEY_LOCAL_MACHINE\SOFTWARE\EA Games\Title]\Install Dir`)
	require.NoError(t, err)

	assert.Equal(t, KeyPath{
		Hive:  HiveLocalMachine,
		Key:   `SOFTWARE\EA Games\Title`,
		Value: "Install Dir",
	}, parsed)
}

func TestParseKeyPathLowercaseHive(t *testing.T) {
	parsed, err := ParseKeyPath(`[hkey_current_user\Software\Title]\Path`)
	require.NoError(t, err)
	assert.Equal(t, HiveCurrentUser, parsed.Hive)
}

func TestParseKeyPathErrors(t *testing.T) {
	cases := map[string]string{
		"no bracketed key": `HKEY_LOCAL_MACHINE\SOFTWARE\Title`,
		"too few segments": `[HKEY_LOCAL_MACHINE]\Install Dir`,
		"unknown hive":     `[NOT_A_HIVE\SOFTWARE\Title]\Install Dir`,
	}

	for name, spec := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseKeyPath(spec)
			assert.Error(t, err)
		})
	}
}
