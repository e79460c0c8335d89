package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundtrack/transfers/internal/report/mocks"
)

func buildReport(t *testing.T) *Report {
	t.Helper()
	ctrl := gomock.NewController(t)
	src := mocks.NewMockSource(ctrl)
	src.EXPECT().Load(gomock.Any(), gomock.Any()).Return(ledger(), nil)

	rep, err := NewService(src, fixedNow, quietLogger()).Build(context.Background(), "ledger.csv")
	require.NoError(t, err)
	return rep
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, buildReport(t), "table", "USD"))
	out := buf.String()

	assert.Contains(t, out, "Transfers as of 2024-01-15")
	assert.Contains(t, out, "AMOUNT (USD)")
	assert.Contains(t, out, "2500.00")
	assert.Contains(t, out, "60.00")
	assert.Contains(t, out, "2023-11-15")
	assert.Contains(t, out, "UPCOMING")
	assert.Contains(t, out, "series 2")
	assert.Contains(t, out, "Total in: 2560.00 USD (1 one-time, 1 recurring)")
	assert.Contains(t, out, "Missed occurrences: 1")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, buildReport(t), "JSON", "USD"))

	var decoded struct {
		AsOf      string `json:"asOf"`
		Transfers []struct {
			Amount        string   `json:"amount"`
			FailedCount   int      `json:"failedCount"`
			MissingMonths []string `json:"missingMonths"`
		} `json:"transfers"`
		Upcoming []json.RawMessage `json:"upcoming"`
		Summary  struct {
			TotalIn string `json:"totalIn"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	require.Len(t, decoded.Transfers, 2)
	assert.Len(t, decoded.Upcoming, 1)
	assert.Equal(t, "60", decoded.Transfers[1].Amount)
	assert.Equal(t, 1, decoded.Transfers[1].FailedCount)
	require.Len(t, decoded.Transfers[1].MissingMonths, 1)
	assert.True(t, strings.HasPrefix(decoded.Transfers[1].MissingMonths[0], "2023-11-15"))
	assert.Equal(t, "2560", decoded.Summary.TotalIn)
}

func TestWriteJSON_GapFieldsAlwaysPresent(t *testing.T) {
	rep := buildReport(t)
	rep.Transfers[1].FailedCount = 0
	rep.Transfers[1].MissingMonths = []time.Time{}

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, rep))

	var decoded struct {
		Transfers []map[string]json.RawMessage `json:"transfers"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded.Transfers, 2)

	oneTime, series := decoded.Transfers[0], decoded.Transfers[1]
	assert.JSONEq(t, "false", string(oneTime["analyzed"]))
	assert.JSONEq(t, "null", string(oneTime["missingMonths"]))
	assert.JSONEq(t, "true", string(series["analyzed"]))
	assert.JSONEq(t, "[]", string(series["missingMonths"]))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, buildReport(t), "csv", "USD"))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, strings.Split(CSVHeader, ","), rows[0])
	assert.Equal(t, []string{"one-time", "", "tx-2500", "2023-09-26", "Primary", "Savings", "2500.00", "", ""}, rows[1])
	assert.Equal(t, []string{"recurring", "1", "tx-sep", "2023-09-15", "Primary", "Savings", "60.00", "1", "2023-11-15"}, rows[2])
	assert.Equal(t, []string{"upcoming", "2", "", "", "Primary", "Savings", "10.00", "", ""}, rows[3])
}

func TestWrite_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, buildReport(t), "xml", "USD")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownFormat)
	assert.Contains(t, err.Error(), "table, json, csv")
}
