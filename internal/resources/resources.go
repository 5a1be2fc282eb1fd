// Package resources serves the static legal reference catalog and
// resolves persistent identifiers, wrapping everything as JSON-LD.
package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/joy7758/redline/internal/domain"
)

// Static catalog URIs. Fixed set; dynamic content lives under the PID
// prefix instead.
const (
	URICivilCodeContract   = "legal://civil-code/contract"
	URIContractChecklist   = "legal://templates/contract-checklist"
	URIPenaltyRules        = "legal://rules/penalty-assessment"
	URIDiscretionStandards = "legal://judicial-discretion/standards"
)

const mimeJSONLD = "application/json+ld"

// Descriptor is one entry of the static catalog listing.
type Descriptor struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description"`
	MimeType    string `json:"mimeType"`
}

type staticResource struct {
	Descriptor
	load func() any
}

// recordTTL bounds how long resolved records sit in cache. Records are
// immutable so this only caps memory, not staleness.
const recordTTL = time.Hour

// Provider resolves both static catalog URIs and PID URIs. PID reads go
// through the cache before hitting the store.
type Provider struct {
	store   domain.Store
	cache   domain.Cache
	catalog []staticResource
}

// NewProvider creates a resource provider over the identifier store.
// The cache may be nil; reads then always hit the store.
func NewProvider(store domain.Store, cache domain.Cache) *Provider {
	return &Provider{
		store: store,
		cache: cache,
		catalog: []staticResource{
			{
				Descriptor: Descriptor{
					URI:         URICivilCodeContract,
					Name:        "《民法典》合同编",
					Description: "中国民法典合同编相关条文",
					MimeType:    mimeJSONLD,
				},
				load: civilCodeContract,
			},
			{
				Descriptor: Descriptor{
					URI:         URIContractChecklist,
					Name:        "合同审查清单",
					Description: "标准合同审查要点清单",
					MimeType:    mimeJSONLD,
				},
				load: contractChecklist,
			},
			{
				Descriptor: Descriptor{
					URI:         URIPenaltyRules,
					Name:        "违约金评估规则",
					Description: "违约金过高判定标准和计算方法",
					MimeType:    mimeJSONLD,
				},
				load: penaltyRules,
			},
			{
				Descriptor: Descriptor{
					URI:         URIDiscretionStandards,
					Name:        "司法裁量权基准",
					Description: "基于《九民纪要》与司法解释的裁量权行使标准",
					MimeType:    mimeJSONLD,
				},
				load: discretionStandards,
			},
		},
	}
}

// List returns descriptors for every static resource.
func (p *Provider) List() []Descriptor {
	out := make([]Descriptor, 0, len(p.catalog))
	for _, res := range p.catalog {
		out = append(out, res.Descriptor)
	}
	return out
}

// GetContent resolves a URI to its JSON-LD payload. Static URIs load
// from the built-in catalog; PID URIs resolve through the cache and
// store. Unknown URIs of either kind are NotFound: direct retrieval is
// the one path where a missing record is a hard failure.
func (p *Provider) GetContent(ctx context.Context, uri string) (json.RawMessage, error) {
	if domain.IsPID(uri) {
		rec, err := p.resolvePID(ctx, uri)
		if err != nil {
			return nil, err
		}
		return formatJSONLD(rec.Content, uri, recordType(rec), rec.ParentPID)
	}

	for _, res := range p.catalog {
		if res.URI == uri {
			return formatJSONLD(res.load(), uri, "Legislation", "")
		}
	}

	return nil, domain.NewNotFound("unknown resource: " + uri)
}

// ResolveRecord fetches a PID record, cache first. A store NotFound
// propagates unchanged.
func (p *Provider) ResolveRecord(ctx context.Context, handle string) (*domain.PIDRecord, error) {
	if p.cache != nil {
		if rec, err := p.cache.GetRecord(ctx, handle); err == nil && rec != nil {
			return rec, nil
		} else if err != nil {
			// Cache trouble is not fatal; fall through to the store.
			slog.WarnContext(ctx, "record cache read failed", "handle", handle, "error", err)
		}
	}

	rec, err := p.store.GetByHandle(ctx, handle)
	if err != nil {
		return nil, err
	}

	if p.cache != nil {
		if err := p.cache.SetRecord(ctx, handle, rec, recordTTL); err != nil {
			slog.WarnContext(ctx, "record cache write failed", "handle", handle, "error", err)
		}
	}
	return rec, nil
}

func (p *Provider) resolvePID(ctx context.Context, uri string) (*domain.PIDRecord, error) {
	handle := domain.HandleFromPID(uri)
	rec, err := p.ResolveRecord(ctx, handle)
	if domain.KindOf(err) == domain.KindNotFound {
		return nil, domain.NewNotFound("PID not found: " + uri)
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// recordType picks the JSON-LD @type for a stored record from its
// publish metadata. Scan reports carry their own type; everything else
// is a compliance report.
func recordType(rec *domain.PIDRecord) string {
	if rec.Metadata["type"] == "scan_report" {
		return "RiskAssessmentReport"
	}
	return "ComplianceReport"
}

// formatJSONLD wraps data with schema.org framing and, for chained PID
// records, an isPartOf provenance pointer.
func formatJSONLD(data any, uri, typeHint, parentPID string) (json.RawMessage, error) {
	doc := map[string]any{
		"@context":    "https://schema.org",
		"@type":       typeHint,
		"@id":         uri,
		"dateCreated": time.Now().UTC().Format(time.RFC3339),
		"mainEntity":  data,
	}
	if parentPID != "" {
		doc["isPartOf"] = map[string]any{
			"@type": "CreativeWork",
			"@id":   parentPID,
		}
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode json-ld document: %w", err)
	}
	return raw, nil
}
