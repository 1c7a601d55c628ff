package client

import (
	"context"
	"net/http"
	"net/url"
)

// Source is a source definition as the event API expects it. The client does
// not validate or reshape it; the API rejects malformed sources.
type Source map[string]interface{}

// SourcesService creates ingestion sources in the active project.
type SourcesService struct {
	transport Requester
	groups    GroupResolver
}

func NewSourcesService(transport Requester, groups GroupResolver) *SourcesService {
	return &SourcesService{transport: transport, groups: groups}
}

// CreateSource issues a single POST /sources?groupId=<active project>.
// The transport's envelope and error are returned as they are.
func (s *SourcesService) CreateSource(ctx context.Context, source Source) (*Envelope, error) {
	groupID, err := s.groups.ActiveGroupID(ctx)
	if err != nil {
		return nil, err
	}

	return s.transport.Request(ctx, RequestOptions{
		Method: http.MethodPost,
		Path:   "/sources",
		Query:  url.Values{"groupId": []string{groupID}},
		Body:   source,
	})
}

// Source types understood by the event API.
const (
	SourceTypeHTTP    = "http"
	SourceTypeRESTAPI = "rest_api"
	SourceTypePubSub  = "pub_sub"
)

// Verifier types.
const (
	VerifierNoop      = "noop"
	VerifierHMAC      = "hmac"
	VerifierBasicAuth = "basic_auth"
	VerifierAPIKey    = "api_key"
)

// SourceSpec is a typed way to build a Source from flags or forms.
type SourceSpec struct {
	Name       string
	Type       string
	Provider   string
	IsDisabled bool
	Verifier   VerifierSpec
}

type VerifierSpec struct {
	Type string

	// hmac
	Header   string
	Hash     string
	Secret   string
	Encoding string

	// basic_auth
	Username string
	Password string

	// api_key
	APIKeyHeader string
	APIKey       string
}

// Source renders the spec in the API's wire shape. Empty optional members are
// left out.
func (s SourceSpec) Source() Source {
	src := Source{
		"name":        s.Name,
		"type":        s.Type,
		"is_disabled": s.IsDisabled,
	}
	if s.Provider != "" {
		src["provider"] = s.Provider
	}

	v := s.Verifier
	if v.Type == "" {
		v.Type = VerifierNoop
	}
	verifier := map[string]interface{}{"type": v.Type}

	switch v.Type {
	case VerifierHMAC:
		verifier["hmac"] = map[string]interface{}{
			"header":   v.Header,
			"hash":     v.Hash,
			"secret":   v.Secret,
			"encoding": v.Encoding,
		}
	case VerifierBasicAuth:
		verifier["basic_auth"] = map[string]interface{}{
			"username": v.Username,
			"password": v.Password,
		}
	case VerifierAPIKey:
		verifier["api_key"] = map[string]interface{}{
			"header_name":  v.APIKeyHeader,
			"header_value": v.APIKey,
		}
	}
	src["verifier"] = verifier

	return src
}
