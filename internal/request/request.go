// Package request builds outbound Control Center requests and runs the
// serial, retrying queue that delivers them.
package request

import (
	"net/url"
	"strings"
)

// Param is one name/value pair in an ordered, duplicate-preserving list.
// Both query and body parameters are modeled this way (not as a map) so
// that repeated keys, such as multiple "report" fields, survive intact.
type Param struct {
	Name  string
	Value string
}

// Request is anything the queue can deliver to the Control Center.
type Request interface {
	Page() string
	// QueryString returns the URL-encoded query string, or "" if there is
	// no query.
	QueryString() string
	// BodyType returns the request's Content-Type, or "" if the request
	// carries no body.
	BodyType() string
	// Body returns the raw request body bytes.
	Body() []byte
}

// FormRequest is a form-encoded (application/x-www-form-urlencoded)
// request, grounded on ServerFormRequest.java.
type FormRequest struct {
	PageName    string
	QueryParams []Param
	BodyParams  []Param
}

// NewFormRequest returns an empty form request for the given page.
func NewFormRequest(page string) *FormRequest {
	return &FormRequest{PageName: page}
}

// AddQueryParam appends a query parameter.
func (r *FormRequest) AddQueryParam(name, value string) {
	r.QueryParams = append(r.QueryParams, Param{name, value})
}

// AddBodyParam appends a single body parameter.
func (r *FormRequest) AddBodyParam(name, value string) {
	r.BodyParams = append(r.BodyParams, Param{name, value})
}

// AddBodyParamList appends one body parameter per value, all sharing name
// — the repeated-key form used for report lists.
func (r *FormRequest) AddBodyParamList(name string, values []string) {
	for _, v := range values {
		r.BodyParams = append(r.BodyParams, Param{name, v})
	}
}

func (r *FormRequest) Page() string { return r.PageName }

func (r *FormRequest) QueryString() string {
	return paramString(r.QueryParams)
}

func (r *FormRequest) BodyType() string {
	if len(r.BodyParams) == 0 {
		return ""
	}
	return "application/x-www-form-urlencoded"
}

func (r *FormRequest) Body() []byte {
	return []byte(paramString(r.BodyParams))
}

func paramString(params []Param) string {
	if len(params) == 0 {
		return ""
	}
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = url.QueryEscape(p.Name) + "=" + url.QueryEscape(p.Value)
	}
	return strings.Join(parts, "&")
}

// XMLRequest is a text/xml request, grounded on ServerXMLRequest.java.
type XMLRequest struct {
	PageName string
	XMLBody  []byte
}

func (r *XMLRequest) Page() string        { return r.PageName }
func (r *XMLRequest) QueryString() string { return "" }
func (r *XMLRequest) BodyType() string    { return "text/xml" }
func (r *XMLRequest) Body() []byte        { return r.XMLBody }
