package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCSV(t *testing.T) {
	csvData := `username,role,manager
jdoe,user,mlee
mlee,manager,`

	got, err := ParseCSV(strings.NewReader(csvData))
	require.NoError(t, err)

	assert.Equal(t, [][]string{
		{"username", "role", "manager"},
		{"jdoe", "user", "mlee"},
		{"mlee", "manager", ""},
	}, got)
}

func TestParseCSVRecords(t *testing.T) {
	csvData := "Username , Full Name,Role\njdoe, Jane Doe ,user\n"

	got, err := ParseCSVRecords(strings.NewReader(csvData))
	require.NoError(t, err)

	assert.Equal(t, []map[string]string{
		{"username": "jdoe", "full name": "Jane Doe", "role": "user"},
	}, got)
}

func TestParseCSVRecordsEmpty(t *testing.T) {
	_, err := ParseCSVRecords(strings.NewReader(""))
	assert.Error(t, err)
}
