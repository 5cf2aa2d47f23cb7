// Package serverenv builds a request from the environment a CGI style server hands to the process.
package serverenv

import (
	"io"
	"log/slog"
	"maps"
	"regexp"
	"slices"
	"strings"

	"github.com/the-limbo/http/application/http/semantic"
	"github.com/the-limbo/http/application/http/stream"
	"github.com/the-limbo/http/application/util/uri"

	"github.com/pkg/errors"
)

// Environment is everything the server passed to the process, already decoded.
type Environment struct {
	// Server holds meta-variables, such as REQUEST_METHOD and HTTP_HOST.
	// Reference: https://datatracker.ietf.org/doc/html/rfc3875#section-4.1
	Server  map[string]string
	Query   map[string]any
	Cookies map[string]string
	Files   map[string]File
	// ParsedBody is the decoded body, e.g. form values.
	ParsedBody any
	// Input is the raw body. It's read until EOF.
	Input io.Reader
}

// File describes an uploaded file stored in a temporary path.
// If Nested is not nil, it's a group of files and the other fields are ignored.
type File struct {
	TmpName   string
	Size      int64
	Error     semantic.UploadErr
	Name      string
	MediaType string

	Nested map[string]File
}

type Options struct {
	// DefaultHost is used when neither HTTP_HOST nor SERVER_NAME is given.
	DefaultHost string
}

var DefaultOptions = Options{
	DefaultHost: "localhost",
}

var protocolRegex = regexp.MustCompile(`^HTTP/(\d(?:\.\d)?)$`)

// FromEnvironment creates a request from env.
func FromEnvironment(env Environment, logger *slog.Logger, opts Options) (*semantic.Request, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.DefaultHost == "" {
		opts.DefaultHost = DefaultOptions.DefaultHost
	}

	req, err := new(semantic.Request).WithProtocolVersion(protocolVersion(env.Server))
	if err != nil {
		return nil, err
	}

	body, err := readInput(env.Input)
	if err != nil {
		return nil, errors.Wrap(err, "reading input")
	}
	req = req.WithBody(body)

	if req, err = req.WithMethod(method(env.Server)); err != nil {
		return nil, err
	}

	for _, name := range slices.Sorted(maps.Keys(env.Server)) {
		field, ok := headerName(name)
		if !ok {
			continue
		}
		if req, err = req.WithHeader(field, env.Server[name]); err != nil {
			return nil, errors.Wrapf(err, "adding %s", name)
		}
	}

	u, err := requestURI(env.Server, opts.DefaultHost)
	if err != nil {
		return nil, errors.Wrap(err, "composing URI")
	}
	// Host header from the client takes precedence.
	req = req.WithURI(u, true)

	files, err := uploadedFiles(env.Files, logger)
	if err != nil {
		return nil, errors.Wrap(err, "opening uploaded files")
	}
	if req, err = req.WithUploadedFiles(files); err != nil {
		return nil, err
	}

	return req.
		WithServerParams(env.Server).
		WithCookieParams(env.Cookies).
		WithQueryParams(env.Query).
		WithParsedBody(env.ParsedBody), nil
}

func protocolVersion(server map[string]string) string {
	if m := protocolRegex.FindStringSubmatch(server["SERVER_PROTOCOL"]); m != nil {
		return m[1]
	}
	return semantic.DefaultProtocolVersion
}

func method(server map[string]string) string {
	if m, ok := server["REQUEST_METHOD"]; ok {
		return m
	}
	return string(semantic.MethodGet)
}

// headerName converts meta-variable name into header field name.
// e.g. HTTP_X_FORWARDED_FOR to X-Forwarded-For.
// Reference: https://datatracker.ietf.org/doc/html/rfc3875#section-4.1.18
func headerName(key string) (string, bool) {
	name, ok := strings.CutPrefix(key, "HTTP_")
	if !ok || name == "" {
		return "", false
	}

	words := strings.Split(strings.ToLower(name), "_")
	for idx, w := range words {
		if w != "" {
			words[idx] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, "-"), true
}

func requestURI(server map[string]string, defaultHost string) (uri.URI, error) {
	scheme := "http"
	if v, ok := server["HTTPS"]; ok && v != "off" {
		scheme = "https"
	}

	host := defaultHost
	if v, ok := server["HTTP_HOST"]; ok {
		host = v
	} else if v, ok := server["SERVER_NAME"]; ok {
		host = v
		if port, ok := server["SERVER_PORT"]; ok {
			host += ":" + port
		}
	}

	target := "/"
	if v, ok := server["REQUEST_URI"]; ok {
		target = v
	} else if v, ok := server["SCRIPT_NAME"]; ok {
		target = v
		if query, ok := server["QUERY_STRING"]; ok {
			target += "?" + query
		}
	}

	return uri.Parse(scheme + "://" + host + target)
}

func readInput(input io.Reader) (*stream.Stream, error) {
	body := stream.New("")
	if input == nil {
		return body, nil
	}

	if _, err := io.Copy(body, input); err != nil {
		return nil, err
	}
	if err := body.Rewind(); err != nil {
		return nil, err
	}
	return body, nil
}

func uploadedFiles(files map[string]File, logger *slog.Logger) (map[string]any, error) {
	result := make(map[string]any, len(files))
	for key, f := range files {
		if f.Nested == nil && f.Error == semantic.UploadErrNoFile {
			logger.Debug("skipping empty file field", "field", key)
			continue
		}

		v, err := walkFile(f)
		if err != nil {
			return nil, errors.Wrapf(err, "field %q", key)
		}
		result[key] = v
	}
	return result, nil
}

func walkFile(f File) (any, error) {
	if f.Nested != nil {
		group := make(map[string]any, len(f.Nested))
		for key, child := range f.Nested {
			v, err := walkFile(child)
			if err != nil {
				return nil, errors.Wrapf(err, "field %q", key)
			}
			group[key] = v
		}
		return group, nil
	}

	// Failed uploads may have no temporary file at all.
	if f.Error != semantic.UploadErrOK {
		return semantic.NewUploadedFile(stream.New(""), f.Size, f.Error, f.Name, f.MediaType), nil
	}

	s, err := stream.Open(f.TmpName, "rb")
	if err != nil {
		return nil, err
	}
	return semantic.NewUploadedFile(s, f.Size, f.Error, f.Name, f.MediaType), nil
}

// ServerParams converts environ, in the form of [os.Environ], into server params.
func ServerParams(environ []string) map[string]string {
	params := make(map[string]string, len(environ))
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok && k != "" {
			params[k] = v
		}
	}
	return params
}
