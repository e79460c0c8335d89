package source

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fundtrack/transfers/internal/model"
)

// JSONParser parses the result of a transfers GraphQL query, either the full
// response ({"data":{"<field>":{"nodes":[...]}}}) or a bare array of nodes.
type JSONParser struct{}

// Format returns the parser name.
func (p *JSONParser) Format() string { return "json" }

type graphQLResponse struct {
	Data   map[string]json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

type connection struct {
	Nodes []transferNode `json:"nodes"`
}

type transferNode struct {
	Transaction *struct {
		ID           string          `json:"id"`
		Amount       decimal.Decimal `json:"amount"`
		Description  string          `json:"description"`
		TransactedAt jsonDate        `json:"transactedAt"`
	} `json:"transaction"`
	SubCategory *model.SubCategory `json:"subCategory"`
	Transfer    model.Transfer     `json:"transfer"`
	Recurring   *struct {
		ID             string          `json:"id"`
		Amount         decimal.Decimal `json:"amount"`
		RecurringStart *jsonDate       `json:"recurringStart"`
		RecurringEnd   *jsonDate       `json:"recurringEnd"`
		Active         bool            `json:"active"`
	} `json:"recurringTransfer"`
	BaseAmount decimal.Decimal `json:"baseAmount"`
}

// Parse decodes the JSON document in r.
func (p *JSONParser) Parse(r io.Reader) ([]model.TransferRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading JSON: %w", err)
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	var nodes []transferNode
	if data[0] == '[' {
		if err := json.Unmarshal(data, &nodes); err != nil {
			return nil, fmt.Errorf("decoding nodes: %w", err)
		}
	} else {
		nodes, err = decodeResponse(data)
		if err != nil {
			return nil, err
		}
	}

	if len(nodes) == 0 {
		return nil, nil
	}
	out := make([]model.TransferRecord, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.record())
	}
	return out, nil
}

func decodeResponse(data []byte) ([]transferNode, error) {
	var resp graphQLResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if len(resp.Errors) > 0 {
		msgs := make([]string, len(resp.Errors))
		for i, e := range resp.Errors {
			msgs[i] = e.Message
		}
		return nil, fmt.Errorf("query returned errors: %s", strings.Join(msgs, "; "))
	}

	if len(resp.Data) != 1 {
		return nil, fmt.Errorf("expected exactly one field under data, got %d", len(resp.Data))
	}

	for field, raw := range resp.Data {
		var conn connection
		if err := json.Unmarshal(raw, &conn); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", field, err)
		}
		return conn.Nodes, nil
	}
	return nil, nil
}

func (n transferNode) record() model.TransferRecord {
	rec := model.TransferRecord{
		SubCategory: n.SubCategory,
		Transfer:    n.Transfer,
		BaseAmount:  n.BaseAmount,
	}
	if tx := n.Transaction; tx != nil {
		rec.Transaction = &model.Transaction{
			ID:           tx.ID,
			Amount:       tx.Amount,
			Description:  tx.Description,
			TransactedAt: tx.TransactedAt.Time,
		}
	}
	if rt := n.Recurring; rt != nil {
		rec.RecurringTransfer = &model.RecurringTransfer{
			ID:             rt.ID,
			Amount:         rt.Amount,
			RecurringStart: rt.RecurringStart.ptr(),
			RecurringEnd:   rt.RecurringEnd.ptr(),
			Active:         rt.Active,
		}
	}
	return rec
}

var errBadDate = errors.New("unrecognized date")

// jsonDate accepts ISO dates with or without a time part.
type jsonDate struct {
	time.Time
}

var jsonDateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", dateFormat}

func (d *jsonDate) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	for _, layout := range jsonDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("%w: %q", errBadDate, s)
}

func (d *jsonDate) ptr() *time.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}
