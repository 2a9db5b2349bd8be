// Package certificate renders filled certificates and saves edited values.
package certificate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/certdesk/certdesk/internal/agency"
	"github.com/certdesk/certdesk/internal/fieldvalues"
	"github.com/certdesk/certdesk/internal/form"
	"github.com/certdesk/certdesk/internal/holders"
	"github.com/certdesk/certdesk/internal/mapping"
	"github.com/certdesk/certdesk/internal/namedinsured"
	"github.com/certdesk/certdesk/internal/templates"
	"github.com/certdesk/certdesk/internal/values"
	"github.com/certdesk/certdesk/pkg/logger"
	"github.com/certdesk/certdesk/pkg/metrics"
)

// ErrInvalidDocument is returned when an uploaded document cannot be read.
var ErrInvalidDocument = errors.New("uploaded document is not a readable PDF form")

const ContentTypePDF = "application/pdf"

type TemplateSource interface {
	Lookup(ctx context.Context, keyOrID string) (*templates.Template, error)
	Resolve(ctx context.Context, keyOrID string) (*templates.Template, []byte, templates.Source, error)
}

type RoleResolver interface {
	Resolve(ctx context.Context, templateKey string, scope mapping.Scope) map[string]string
}

type ValueStore interface {
	Get(ctx context.Context, accountID, templateID string) (*fieldvalues.FieldValueSet, error)
	Save(ctx context.Context, accountID, templateID string, incoming map[string]string) (*fieldvalues.SaveResult, error)
}

type HolderSource interface {
	Get(ctx context.Context, accountID, id string) (*holders.Holder, error)
}

type AgencySource interface {
	Get(ctx context.Context, accountID string) (*agency.Settings, error)
}

// Deps are the collaborators of Service. Records and Objects are optional.
type Deps struct {
	Templates    TemplateSource
	Mappings     RoleResolver
	Values       ValueStore
	Holders      HolderSource
	Agency       AgencySource
	NamedInsured namedinsured.Source
	Records      RecordRepository
	Objects      templates.ObjectStore
}

type Service struct {
	Deps
}

func NewService(d Deps) *Service {
	if d.NamedInsured == nil {
		d.NamedInsured = namedinsured.None{}
	}
	if d.Records == nil {
		d.Records = NewMemoryRecords()
	}
	return &Service{Deps: d}
}

// RenderRequest names what to render. HolderID is optional.
type RenderRequest struct {
	AccountID   string
	TemplateKey string
	HolderID    string
}

// Rendered is a filled document plus the fields that could not be written.
type Rendered struct {
	Bytes       []byte
	Filename    string
	ContentType string
	Failures    []form.FieldFailure
	Source      templates.Source
	RecordID    string
}

type inputs struct {
	holderRoles, agencyRoles, insuredRoles map[string]string
	holder                                 *holders.Holder
	agency                                 *agency.Settings
	insured                                *namedinsured.NamedInsured
	base                                   map[string]string
}

// Render fills the template for an account. The role maps, the holder, agency
// and named-insured records and the stored values are fetched concurrently.
func (s *Service) Render(ctx context.Context, req RenderRequest) (*Rendered, error) {
	tpl, data, src, err := s.Templates.Resolve(ctx, req.TemplateKey)
	if err != nil {
		metrics.Renders.WithLabelValues("error").Inc()
		return nil, err
	}
	in, err := s.gather(ctx, req, tpl)
	if err != nil {
		metrics.Renders.WithLabelValues("error").Inc()
		return nil, err
	}

	final := values.Aggregate(
		in.base,
		mapping.Apply(in.holderRoles, in.holder.Roles()),
		mapping.Apply(in.agencyRoles, in.agency.Roles()),
		mapping.Apply(in.insuredRoles, in.insured.Roles()),
	)
	res, err := form.Fill(data, final)
	if err != nil {
		metrics.Renders.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("fill %s: %w", tpl.TypeKey, err)
	}
	for _, f := range res.Failures {
		logger.Warnf("render %s/%s: field %s not filled: %s", req.AccountID, tpl.TypeKey, f.Field, f.Reason)
	}
	if n := len(res.Failures); n > 0 {
		metrics.FieldFailures.WithLabelValues(tpl.TypeKey).Add(float64(n))
	}
	metrics.Renders.WithLabelValues("ok").Inc()

	out := &Rendered{
		Bytes:       res.Document,
		Filename:    tpl.Filename(),
		ContentType: ContentTypePDF,
		Failures:    res.Failures,
		Source:      src,
	}
	out.RecordID = s.record(ctx, req.AccountID, tpl, out)
	return out, nil
}

func (s *Service) gather(ctx context.Context, req RenderRequest, tpl *templates.Template) (*inputs, error) {
	in := &inputs{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		in.holderRoles = s.Mappings.Resolve(gctx, tpl.TypeKey, mapping.ScopeHolder)
		in.agencyRoles = s.Mappings.Resolve(gctx, tpl.TypeKey, mapping.ScopeAgency)
		in.insuredRoles = s.Mappings.Resolve(gctx, tpl.TypeKey, mapping.ScopeNamedInsured)
		return nil
	})
	g.Go(func() error {
		if req.HolderID == "" {
			return nil
		}
		h, err := s.Holders.Get(gctx, req.AccountID, req.HolderID)
		if err != nil {
			return err
		}
		in.holder = h
		return nil
	})
	g.Go(func() error {
		a, err := s.Agency.Get(gctx, req.AccountID)
		if errors.Is(err, agency.ErrNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("load agency settings: %w", err)
		}
		in.agency = a
		return nil
	})
	g.Go(func() error {
		in.insured = s.NamedInsured.Lookup(gctx, req.AccountID)
		return nil
	})
	g.Go(func() error {
		set, err := s.Values.Get(gctx, req.AccountID, tpl.ID)
		if err != nil {
			return fmt.Errorf("load field values: %w", err)
		}
		if set != nil {
			in.base = set.Values
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return in, nil
}

// record stores a GeneratedCertificate row and, when an object store is
// configured, the document itself. Failures here never fail the render.
func (s *Service) record(ctx context.Context, accountID string, tpl *templates.Template, r *Rendered) string {
	rec := &Record{
		ID:           uuid.New().String(),
		AccountID:    accountID,
		TemplateID:   tpl.ID,
		Name:         r.Filename,
		Status:       "generated",
		FailureCount: len(r.Failures),
		GeneratedAt:  time.Now().UTC(),
	}
	if s.Objects != nil {
		key := "certificates/" + accountID + "/" + rec.ID + ".pdf"
		if err := s.Objects.Put(ctx, key, r.Bytes, ContentTypePDF); err != nil {
			logger.Warnf("upload certificate %s: %v", rec.ID, err)
		} else {
			rec.StorageKey = key
			rec.Status = "stored"
		}
	}
	if err := s.Records.Create(ctx, rec); err != nil {
		logger.Warnf("record certificate %s: %v", rec.ID, err)
	}
	return rec.ID
}

// SaveRequest carries edited values and, optionally, the PDF a form-filling
// client produced.
type SaveRequest struct {
	AccountID   string
	TemplateKey string
	Values      map[string]string
	Document    []byte
}

// Save persists values for an account and template. Values read from
// Document override the caller's values for the same field; document fields
// the caller did not send are taken when they are non-empty.
func (s *Service) Save(ctx context.Context, req SaveRequest) (*fieldvalues.SaveResult, error) {
	tpl, err := s.template(ctx, req.TemplateKey)
	if err != nil {
		return nil, err
	}
	incoming := make(map[string]string, len(req.Values))
	for k, v := range req.Values {
		incoming[k] = v
	}
	if len(req.Document) > 0 {
		extracted, err := form.ReadValues(req.Document)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
		for k, v := range extracted {
			if _, sent := incoming[k]; sent || v != "" {
				incoming[k] = v
			}
		}
	}
	return s.Values.Save(ctx, req.AccountID, tpl.ID, incoming)
}

// StoredValues is the response of GetValues.
type StoredValues struct {
	Values  map[string]string `json:"values"`
	Version int64             `json:"version"`
	Fields  []form.FieldInfo  `json:"fields"`
}

// GetValues returns the stored values of an account and template together
// with the template's field metadata.
func (s *Service) GetValues(ctx context.Context, accountID, templateKey string) (*StoredValues, error) {
	tpl, err := s.template(ctx, templateKey)
	if err != nil {
		return nil, err
	}
	out := &StoredValues{Values: map[string]string{}, Fields: tpl.KnownFields}
	set, err := s.Values.Get(ctx, accountID, tpl.ID)
	if err != nil {
		return nil, err
	}
	if set != nil {
		out.Values, out.Version = set.Values, set.Version
	}
	if len(out.Fields) == 0 {
		if _, data, _, err := s.Templates.Resolve(ctx, templateKey); err == nil {
			if fields, err := form.Introspect(data); err == nil {
				out.Fields = fields
			}
		}
	}
	if out.Fields == nil {
		out.Fields = []form.FieldInfo{}
	}
	return out, nil
}

// Certificates lists the generated certificates of an account, newest first.
func (s *Service) Certificates(ctx context.Context, accountID string) ([]*Record, error) {
	return s.Records.List(ctx, accountID)
}

// template finds the stored row, falling back to a template served from a local file.
func (s *Service) template(ctx context.Context, keyOrID string) (*templates.Template, error) {
	tpl, err := s.Templates.Lookup(ctx, keyOrID)
	if err == nil {
		return tpl, nil
	}
	if !errors.Is(err, templates.ErrNotFound) {
		return nil, err
	}
	tpl, _, _, err = s.Templates.Resolve(ctx, keyOrID)
	return tpl, err
}
