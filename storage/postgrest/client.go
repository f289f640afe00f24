// Package postgrest is a core.TableService talking to a PostgREST endpoint (Supabase REST API).
package postgrest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"
	"github.com/spf13/cast"

	"github.com/trezcool/lophoc/core"
)

const (
	restPath = "/rest/v1/"

	singleObjectMediaType = "application/vnd.pgrst.object+json"
	noRowsCode            = "PGRST116"
)

// apiError is the error body returned by PostgREST.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e apiError) Error() string {
	msg := e.Message
	if e.Details != "" {
		msg += " (" + e.Details + ")"
	}
	if e.Code != "" {
		msg = e.Code + ": " + msg
	}
	return msg
}

type Client struct {
	baseURL string
	headers map[string]string
	rest    *rest.Client
}

var _ core.TableService = (*Client)(nil)

func NewClient(conf core.SupabaseConfig) *Client {
	return NewClientWithHTTP(conf, &http.Client{Timeout: conf.Timeout})
}

func NewClientWithHTTP(conf core.SupabaseConfig, httpClient *http.Client) *Client {
	headers := map[string]string{
		"apikey":        conf.AnonKey,
		"Authorization": "Bearer " + conf.AnonKey,
		"Accept":        "application/json",
	}
	if conf.Schema != "" {
		headers["Accept-Profile"] = conf.Schema
		headers["Content-Profile"] = conf.Schema
	}
	return &Client{
		baseURL: strings.TrimRight(conf.URL, "/") + restPath,
		headers: headers,
		rest:    &rest.Client{HTTPClient: httpClient},
	}
}

func (c *Client) newRequest(method rest.Method, table string, extraHeaders map[string]string) rest.Request {
	headers := make(map[string]string, len(c.headers)+len(extraHeaders))
	for k, v := range c.headers {
		headers[k] = v
	}
	for k, v := range extraHeaders {
		headers[k] = v
	}
	return rest.Request{
		Method:      method,
		BaseURL:     c.baseURL + table,
		Headers:     headers,
		QueryParams: make(map[string]string),
	}
}

func (c *Client) send(ctx context.Context, table, op string, req rest.Request) (*rest.Response, error) {
	httpReq, err := rest.BuildRequestObject(req)
	if err != nil {
		return nil, core.NewRemoteError(table, op, err)
	}
	httpRes, err := c.rest.MakeRequest(httpReq.WithContext(ctx))
	if err != nil {
		return nil, core.NewRemoteError(table, op, err)
	}
	res, err := rest.BuildResponse(httpRes)
	if err != nil {
		return nil, core.NewRemoteError(table, op, err)
	}
	if res.StatusCode >= http.StatusOK && res.StatusCode < http.StatusMultipleChoices {
		return res, nil
	}

	var apiErr apiError
	if jsonErr := json.Unmarshal([]byte(res.Body), &apiErr); jsonErr != nil || apiErr.Message == "" {
		apiErr = apiError{Message: fmt.Sprintf("unexpected status %d: %s", res.StatusCode, res.Body)}
	}
	if req.Headers["Accept"] == singleObjectMediaType &&
		(res.StatusCode == http.StatusNotAcceptable || apiErr.Code == noRowsCode) {
		return nil, core.ErrNotFound
	}
	return nil, core.NewRemoteError(table, op, apiErr)
}

func (c *Client) Select(ctx context.Context, q core.Query) ([]core.Row, error) {
	req := c.newRequest(rest.Get, q.Table, nil)
	setQueryParams(req.QueryParams, q)

	res, err := c.send(ctx, q.Table, "select", req)
	if err != nil {
		return nil, err
	}

	rows := make([]core.Row, 0)
	if err = json.Unmarshal([]byte(res.Body), &rows); err != nil {
		return nil, core.NewRemoteError(q.Table, "select", errors.Wrap(err, "decoding rows"))
	}
	return rows, nil
}

// SelectOne asks PostgREST for a single object: it answers 406 unless exactly one row matches.
func (c *Client) SelectOne(ctx context.Context, q core.Query) (core.Row, error) {
	q.Limit = 0
	req := c.newRequest(rest.Get, q.Table, map[string]string{"Accept": singleObjectMediaType})
	setQueryParams(req.QueryParams, q)

	res, err := c.send(ctx, q.Table, "select", req)
	if err != nil {
		return nil, err
	}

	var row core.Row
	if err = json.Unmarshal([]byte(res.Body), &row); err != nil {
		return nil, core.NewRemoteError(q.Table, "select", errors.Wrap(err, "decoding row"))
	}
	if row == nil {
		return nil, core.ErrNotFound
	}
	return row, nil
}

func (c *Client) Insert(ctx context.Context, table string, row core.Row) error {
	body, err := json.Marshal(row)
	if err != nil {
		return errors.Wrap(err, "encoding row")
	}
	req := c.newRequest(rest.Post, table, map[string]string{
		"Content-Type": "application/json",
		"Prefer":       "return=minimal",
	})
	req.Body = body

	_, err = c.send(ctx, table, "insert", req)
	return err
}

func (c *Client) Update(ctx context.Context, table string, values core.Row, filters ...core.Filter) error {
	body, err := json.Marshal(values)
	if err != nil {
		return errors.Wrap(err, "encoding values")
	}
	req := c.newRequest(rest.Patch, table, map[string]string{
		"Content-Type": "application/json",
		"Prefer":       "return=minimal",
	})
	req.Body = body
	for _, f := range filters {
		req.QueryParams[f.Column] = "eq." + formatValue(f.Value)
	}

	_, err = c.send(ctx, table, "update", req)
	return err
}

func setQueryParams(params map[string]string, q core.Query) {
	if len(q.Columns) > 0 {
		params["select"] = strings.Join(q.Columns, ",")
	} else {
		params["select"] = "*"
	}
	for _, f := range q.Filters {
		params[f.Column] = "eq." + formatValue(f.Value)
	}
	if len(q.Order) > 0 {
		parts := make([]string, 0, len(q.Order))
		for _, ord := range q.Order {
			dir := "desc"
			if ord.Ascending {
				dir = "asc"
			}
			parts = append(parts, ord.Field+"."+dir)
		}
		params["order"] = strings.Join(parts, ",")
	}
	if q.Limit > 0 {
		params["limit"] = strconv.Itoa(q.Limit)
	}
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case time.Time:
		return val.UTC().Format(time.RFC3339Nano)
	case nil:
		return "null"
	default:
		return cast.ToString(val)
	}
}
