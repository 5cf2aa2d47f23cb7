package semantic

import (
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/the-limbo/http/application/http/stream"
	"github.com/the-limbo/http/application/util/rule"
	"github.com/the-limbo/http/application/util/uri"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// Request is a server side HTTP request.
// Every With method returns a modified copy and leaves the receiver untouched.
type Request struct {
	Message

	method        Method
	uri           uri.URI
	requestTarget string

	queryParams   map[string]any
	cookieParams  map[string]string
	serverParams  map[string]string
	uploadedFiles map[string]any
	parsedBody    any
	attributes    map[string]any
}

// NewRequest creates a request with an empty body.
func NewRequest(method string, rawURI string) (*Request, error) {
	u, err := uri.Parse(rawURI)
	if err != nil {
		return nil, errors.Wrap(err, "parsing URI")
	}

	r, err := new(Request).WithMethod(method)
	if err != nil {
		return nil, err
	}

	return r.WithURI(u, false).WithBody(stream.New("")), nil
}

func NewServerRequest(method string, rawURI string, serverParams map[string]string) (*Request, error) {
	r, err := NewRequest(method, rawURI)
	if err != nil {
		return nil, err
	}
	return r.WithServerParams(serverParams), nil
}

func (r *Request) clone() *Request {
	c := *r
	c.queryParams = cloneMap(r.queryParams)
	c.cookieParams = maps.Clone(r.cookieParams)
	c.serverParams = maps.Clone(r.serverParams)
	c.uploadedFiles = cloneMap(r.uploadedFiles)
	c.attributes = cloneMap(r.attributes)
	return &c
}

func (r *Request) WithProtocolVersion(version string) (*Request, error) {
	msg, err := r.Message.WithProtocolVersion(version)
	if err != nil {
		return nil, err
	}
	c := r.clone()
	c.Message = msg
	return c, nil
}

// WithHeader appends values to the field, just like [Request.WithAddedHeader].
func (r *Request) WithHeader(name string, values ...string) (*Request, error) {
	msg, err := r.Message.WithHeader(name, values...)
	if err != nil {
		return nil, err
	}
	c := r.clone()
	c.Message = msg
	return c, nil
}

func (r *Request) WithAddedHeader(name string, values ...string) (*Request, error) {
	return r.WithHeader(name, values...)
}

func (r *Request) WithoutHeader(name string) *Request {
	c := r.clone()
	c.Message = r.Message.WithoutHeader(name)
	return c
}

func (r *Request) WithBody(body *stream.Stream) *Request {
	c := r.clone()
	c.Message = r.Message.WithBody(body)
	return c
}

// Method returns the uppercased method. Default is GET.
func (r *Request) Method() string {
	if r.method == "" {
		return string(MethodGet)
	}
	return string(r.method)
}

// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-9.1
func (r *Request) WithMethod(method string) (*Request, error) {
	if !rule.IsValidToken(method) {
		return nil, errors.Wrapf(ErrInvalidMethod, "%q is not a token", method)
	}
	c := r.clone()
	c.method = Method(strings.ToUpper(method))
	return c, nil
}

func (r *Request) IsMethod(method string) bool { return r.Method() == method }

func (r *Request) IsGet() bool     { return r.IsMethod(string(MethodGet)) }
func (r *Request) IsHead() bool    { return r.IsMethod(string(MethodHead)) }
func (r *Request) IsPost() bool    { return r.IsMethod(string(MethodPost)) }
func (r *Request) IsPut() bool     { return r.IsMethod(string(MethodPut)) }
func (r *Request) IsPatch() bool   { return r.IsMethod(string(MethodPatch)) }
func (r *Request) IsDelete() bool  { return r.IsMethod(string(MethodDelete)) }
func (r *Request) IsOptions() bool { return r.IsMethod(string(MethodOptions)) }

// IsSafe reports whether the method is read-only.
func (r *Request) IsSafe() bool { return Method(r.Method()).IsSafe() }

// IsXHR reports whether the request was sent by XMLHttpRequest of a browser.
func (r *Request) IsXHR() bool {
	return r.HeaderLine("X-Requested-With") == "XMLHttpRequest"
}

// RequestTarget returns the target set with [Request.WithRequestTarget].
// If not set, it's composed from the URI in origin-form.
// When the URI has no absolute path, "/" is used.
// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-3.2.1
func (r *Request) RequestTarget() string {
	if r.requestTarget != "" {
		return r.requestTarget
	}

	path := r.uri.Path()
	if !strings.HasPrefix(path, "/") {
		return "/"
	}

	if query := r.uri.Query(); query != "" {
		return path + "?" + query
	}
	return path
}

// WithRequestTarget overrides the request target.
// Any non-empty target without whitespace and control characters is accepted.
func (r *Request) WithRequestTarget(target string) (*Request, error) {
	if target == "" {
		return nil, errors.Wrap(ErrInvalidRequestTarget, "empty target")
	}
	for idx := 0; idx < len(target); idx++ {
		if !rule.IsVisible(target[idx]) {
			return nil, errors.Wrapf(ErrInvalidRequestTarget, "invalid byte at %d of %q", idx, target)
		}
	}

	c := r.clone()
	c.requestTarget = target
	return c, nil
}

// URI returns the request URI. It's zero value if not set.
func (r *Request) URI() uri.URI { return r.uri }

// WithURI replaces the URI and appends its host to the Host header.
// Host header is left as is when the host of u is empty,
// or preserveHost is true and the request already has Host header.
// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-7.2
func (r *Request) WithURI(u uri.URI, preserveHost bool) *Request {
	c := r.clone()
	c.uri = u

	if u.Host() == "" || (preserveHost && c.HasHeader("Host")) {
		return c
	}

	host := u.Host()
	if port, ok := u.Port(); ok {
		host += ":" + strconv.FormatUint(uint64(port), 10)
	}

	c.Message = c.Message.withTrustedHeader("Host", host)
	return c
}

func (r *Request) QueryParams() map[string]any { return cloneMap(r.queryParams) }

func (r *Request) WithQueryParams(query map[string]any) *Request {
	c := r.clone()
	c.queryParams = cloneMap(query)
	return c
}

func (r *Request) CookieParams() map[string]string { return maps.Clone(r.cookieParams) }

func (r *Request) WithCookieParams(cookies map[string]string) *Request {
	c := r.clone()
	c.cookieParams = maps.Clone(cookies)
	return c
}

func (r *Request) CookieParam(key string, def string) string {
	if v, ok := r.cookieParams[key]; ok {
		return v
	}
	return def
}

func (r *Request) ServerParams() map[string]string { return maps.Clone(r.serverParams) }

func (r *Request) WithServerParams(params map[string]string) *Request {
	c := r.clone()
	c.serverParams = maps.Clone(params)
	return c
}

func (r *Request) UploadedFiles() map[string]any { return cloneMap(r.uploadedFiles) }

// WithUploadedFiles replaces uploaded files.
// files is a tree whose nodes are map[string]any or []any, and leaves are *UploadedFile.
func (r *Request) WithUploadedFiles(files map[string]any) (*Request, error) {
	if err := validateUploadedFiles(files); err != nil {
		return nil, err
	}

	c := r.clone()
	c.uploadedFiles = cloneMap(files)
	return c, nil
}

func validateUploadedFiles(node any) error {
	switch v := node.(type) {
	case *UploadedFile:
		if v == nil {
			return errors.Wrap(ErrInvalidUploadedFilesStructure, "nil uploaded file")
		}
		return nil
	case map[string]any:
		for key, child := range v {
			if err := validateUploadedFiles(child); err != nil {
				return errors.Wrapf(err, "at %q", key)
			}
		}
		return nil
	case []any:
		for idx, child := range v {
			if err := validateUploadedFiles(child); err != nil {
				return errors.Wrapf(err, "at %d", idx)
			}
		}
		return nil
	}

	return errors.Wrapf(ErrInvalidUploadedFilesStructure, "unexpected %T", node)
}

// cloneMap copies m along with the maps and slices nested in it.
// Other values, e.g. *UploadedFile, are shared.
func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	c := make(map[string]any, len(m))
	for k, v := range m {
		c[k] = cloneTree(v)
	}
	return c
}

func cloneTree(node any) any {
	switch v := node.(type) {
	case map[string]any:
		return cloneMap(v)
	case []any:
		if v == nil {
			return v
		}
		c := make([]any, len(v))
		for idx, child := range v {
			c[idx] = cloneTree(child)
		}
		return c
	case []string:
		return slices.Clone(v)
	}
	return node
}

// ParsedBody returns the decoded body, e.g. form values or decoded JSON.
func (r *Request) ParsedBody() any { return r.parsedBody }

func (r *Request) WithParsedBody(data any) *Request {
	c := r.clone()
	c.parsedBody = data
	return c
}

func (r *Request) Attributes() map[string]any { return cloneMap(r.attributes) }

func (r *Request) Attribute(name string, def any) any {
	if v, ok := r.attributes[name]; ok {
		return v
	}
	return def
}

func (r *Request) WithAttribute(name string, value any) *Request {
	c := r.clone()
	if c.attributes == nil {
		c.attributes = make(map[string]any)
	}
	c.attributes[name] = value
	return c
}

func (r *Request) WithoutAttribute(name string) *Request {
	c := r.clone()
	delete(c.attributes, name)
	return c
}

// Get looks up key in the parsed body first, and then in the query parameters.
// Nil values are treated as absent.
func (r *Request) Get(key string, def any) any {
	if v, ok := r.bodyFields()[key]; ok && v != nil {
		return v
	}
	if v, ok := r.queryParams[key]; ok && v != nil {
		return v
	}
	return def
}

// Params merges query parameters and fields of the parsed body.
// Fields of the parsed body take precedence.
func (r *Request) Params() map[string]any {
	params := cloneMap(r.queryParams)
	if params == nil {
		params = make(map[string]any)
	}
	maps.Copy(params, r.bodyFields())
	return params
}

// bodyFields returns top level fields of the parsed body.
// Values other than maps are converted through their JSON object representation,
// so exported fields of a struct are visible by their JSON names.
func (r *Request) bodyFields() map[string]any {
	switch body := r.parsedBody.(type) {
	case nil:
		return nil
	case map[string]any:
		return body
	case map[string]string:
		fields := make(map[string]any, len(body))
		for k, v := range body {
			fields[k] = v
		}
		return fields
	case map[string][]string:
		fields := make(map[string]any, len(body))
		for k, v := range body {
			fields[k] = v
		}
		return fields
	}

	b, err := json.Marshal(r.parsedBody)
	if err != nil {
		return nil
	}

	var fields map[string]any
	if err := json.Unmarshal(b, &fields); err != nil {
		// Not an object.
		return nil
	}
	return fields
}
