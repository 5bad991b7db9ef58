package models

import (
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestJSONValueScan(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"text", `"dark"`, `"dark"`},
		{"bytes", []byte(`[1,2]`), `[1,2]`},
		{"integer cell", int64(3), `3`},
		{"real cell", float64(0.5), `0.5`},
		{"bool cell", true, `true`},
		{"null", nil, `null`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var j JSONValue
			require.NoError(t, j.Scan(tt.in))
			assert.Equal(t, tt.want, j.String())
		})
	}

	var j JSONValue
	assert.Error(t, j.Scan(struct{}{}))
}

func TestJSONValueNumericAffinityColumn(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "legacy.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// Tables created with a JSON column type store scalar documents as numbers.
	require.NoError(t, db.Exec("CREATE TABLE legacy (value JSON)").Error)
	require.NoError(t, db.Exec("INSERT INTO legacy (value) VALUES ('3')").Error)

	var j JSONValue
	require.NoError(t, db.Raw("SELECT value FROM legacy").Row().Scan(&j))
	assert.Equal(t, "3", j.String())
}

func TestJSONValueMarshal(t *testing.T) {
	b, err := JSONValue(`{"a":1}`).MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(b))

	var j JSONValue
	require.NoError(t, j.UnmarshalJSON([]byte(`[true]`)))
	assert.Equal(t, `[true]`, j.String())
}
