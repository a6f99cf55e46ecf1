package configuration

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSheetsOptions_ExcludedTitles(t *testing.T) {
	opts := &SheetsOptions{ExcludedSheets: "pm location & contact pic, other , "}
	require.Equal(t, []string{"pm location & contact pic", "other"}, opts.ExcludedTitles())
}

func TestConfiguration_Validate_NegativeArchiveDays(t *testing.T) {
	c := &Configuration{ArchiveDays: -1, SyncInterval: 10 * time.Minute}
	c.Sheets.HeaderRow = 1
	require.Error(t, c.validate())
}

func TestConfiguration_Validate_CheckinURLFromBase(t *testing.T) {
	c := &Configuration{ArchiveDays: 7, SyncInterval: 10 * time.Minute}
	c.Sheets.HeaderRow = 1
	c.Checkin.BaseURL = "https://api.example.com/"
	c.Checkin.Path = "api/iro/xls/dn/checkins"
	require.NoError(t, c.validate())
	require.Equal(t, "https://api.example.com/api/iro/xls/dn/checkins", c.Checkin.URL)
}

func TestDatabaseOptions_ConnectionString(t *testing.T) {
	d := &DatabaseOptions{Name: "fasttrack", Host: "db", Port: "5432", User: "u", Password: "p"}
	require.Equal(t, "host=db port=5432 user=u dbname=fasttrack password=p sslmode=disable", d.ConnectionString())
}
