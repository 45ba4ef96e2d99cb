package couch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// ViewResult is the decoded answer of a view query.
type ViewResult struct {
	TotalRows int64     `json:"total_rows"`
	Offset    int64     `json:"offset"`
	Rows      []ViewRow `json:"rows"`
}

// ViewRow is one emitted row of a view.
type ViewRow struct {
	ID    string      `json:"id"`
	Key   interface{} `json:"key"`
	Value interface{} `json:"value"`
}

// ValueInt returns the row value as an int, 0 when it is not numeric.
// Handy for the common "_count"/"_sum" reduce outputs.
func (r *ViewRow) ValueInt() int {
	num, _ := r.Value.(float64)
	return int(num)
}

// jsonValuedParams are the view parameters the server expects to be
// JSON-encoded, so that string keys arrive quoted.
var jsonValuedParams = map[string]bool{
	"key":       true,
	"keys":      true,
	"startkey":  true,
	"endkey":    true,
	"start_key": true,
	"end_key":   true,
}

// encodeViewOptions turns view query options into URL parameters.
// Key-valued parameters are JSON-encoded; everything else is rendered
// with its natural textual form.
func encodeViewOptions(options map[string]interface{}) (url.Values, error) {
	if len(options) == 0 {
		return nil, nil
	}
	query := url.Values{}
	for name, value := range options {
		if jsonValuedParams[name] {
			encoded, err := json.Marshal(value)
			if err != nil {
				return nil, &JSONEncodeError{Cause: err}
			}
			query.Set(name, string(encoded))
			continue
		}
		query.Set(name, fmt.Sprint(value))
	}
	return query, nil
}

// ExecuteView queries a view of a design document. Options follow the
// server's view parameters, e.g. "descending", "limit", "key".
func (d *Database) ExecuteView(ctx context.Context, designName, viewName string, options map[string]interface{}) (*ViewResult, error) {
	designPath, err := d.path.DesignDocument(designName)
	if err != nil {
		return nil, err
	}
	path, err := designPath.View(viewName)
	if err != nil {
		return nil, err
	}
	query, err := encodeViewOptions(options)
	if err != nil {
		return nil, err
	}
	resp, err := d.client.transport.Send(ctx, http.MethodGet, path.String(), query, nil, nil)
	if err != nil {
		return nil, err
	}
	if err := Classify(IntentRead, resp); err != nil {
		return nil, err
	}
	var result ViewResult
	if err := DecodeSuccess(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
