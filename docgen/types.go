package docgen

import (
	"context"
	"io"
	"time"

	"github.com/goliatone/go-docgen/markdown"
)

// Format is the document output format.
type Format string

const (
	FormatPDF      Format = "pdf"
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
)

// DeliveryMode describes how documents are delivered.
type DeliveryMode string

const (
	DeliverySync  DeliveryMode = "sync"
	DeliveryAsync DeliveryMode = "async"
	DeliveryAuto  DeliveryMode = "auto"
)

// ContentSpec carries the intent a content source needs to produce Markdown:
// a stored slug to look up, free-form instructions for generated content, or
// arbitrary source params.
type ContentSpec struct {
	Slug         string
	Instructions string
	Locale       string
	Params       map[string]any
}

func (s ContentSpec) isZero() bool {
	return s.Slug == "" && s.Instructions == "" && s.Locale == "" && len(s.Params) == 0
}

// ContentPolicy supplies default content specs for requests without one.
type ContentPolicy interface {
	DefaultSpec(ctx context.Context, actor Actor, req DocumentRequest, def ResolvedDefinition) (ContentSpec, bool, error)
}

// ContentPolicyFunc adapts a function to a ContentPolicy.
type ContentPolicyFunc func(ctx context.Context, actor Actor, req DocumentRequest, def ResolvedDefinition) (ContentSpec, bool, error)

func (f ContentPolicyFunc) DefaultSpec(ctx context.Context, actor Actor, req DocumentRequest, def ResolvedDefinition) (ContentSpec, bool, error) {
	if f == nil {
		return ContentSpec{}, false, nil
	}
	return f(ctx, actor, req, def)
}

// DocumentRequest captures a document generation request. Content carries
// inline Markdown for requests that bring their own body; requests that name
// a definition fetch their body through the definition's content source.
type DocumentRequest struct {
	Definition        string
	SourceVariant     string
	Title             string
	Content           []byte
	Spec              ContentSpec
	Format            Format
	Theme             string
	Locale            string
	Timezone          string
	Delivery          DeliveryMode
	IdempotencyKey    string
	EstimatedTokens   int
	EstimatedBytes    int64
	EstimatedDuration time.Duration
	Output            io.Writer
	RenderOptions     RenderOptions
}

// DocumentDefinition declares a generatable document.
type DocumentDefinition struct {
	Name            string
	Description     string
	Title           string
	Theme           string
	AllowedFormats  []Format
	DefaultFilename string
	SourceKey       string
	Transformers    []TransformerConfig
	DefaultSpec     ContentSpec
	ContentPolicy   ContentPolicy
	SourceVariants  map[string]SourceVariant
	Policy          DocumentPolicy
	DeliveryPolicy  *DeliveryPolicy
	Template        TemplateOptions
}

// SourceVariant allows alternate sources and policy overrides.
type SourceVariant struct {
	SourceKey       string
	Title           string
	Theme           string
	AllowedFormats  []Format
	DefaultFilename string
	Transformers    []TransformerConfig
	Policy          *DocumentPolicy
	Template        *TemplateOptions
}

// DocumentPolicy enforces generation limits and redaction.
type DocumentPolicy struct {
	MaxTokens       int
	MaxContentBytes int64
	MaxBytes        int64
	MaxDuration     time.Duration
	RedactPatterns  []string
	RedactionValue  string
}

// DeliveryPolicy configures delivery selection thresholds.
type DeliveryPolicy struct {
	Default    DeliveryMode
	Thresholds DeliveryThresholds
}

// DeliveryThresholds drive auto delivery decisions.
type DeliveryThresholds struct {
	MaxTokens   int
	MaxBytes    int64
	MaxDuration time.Duration
}

// DocumentCounts tracks token progress. Units are parsed block tokens.
type DocumentCounts struct {
	Processed int64
	Total     int64
	Errors    int64
}

// DocumentState captures progress states.
type DocumentState string

const (
	StateQueued     DocumentState = "queued"
	StateRunning    DocumentState = "running"
	StatePublishing DocumentState = "publishing"
	StateCompleted  DocumentState = "completed"
	StateFailed     DocumentState = "failed"
	StateCanceled   DocumentState = "canceled"
	StateDeleted    DocumentState = "deleted"
)

// DocumentRecord captures tracker state for a document.
type DocumentRecord struct {
	ID           string
	Definition   string
	Title        string
	Format       Format
	Theme        string
	State        DocumentState
	RequestedBy  Actor
	Scope        Scope
	Request      DocumentRequest `json:"-"`
	Counts       DocumentCounts
	Pages        int
	BytesWritten int64
	Artifact     ArtifactRef
	CreatedAt    time.Time
	StartedAt    time.Time
	CompletedAt  time.Time
	ExpiresAt    time.Time
}

// Actor identifies the requesting principal.
type Actor struct {
	ID      string
	Scope   Scope
	Roles   []string
	Details map[string]any
}

// Scope identifies tenant/workspace scope.
type Scope struct {
	TenantID    string
	WorkspaceID string
}

// DocumentResult captures a completed document.
type DocumentResult struct {
	ID       string
	Delivery DeliveryMode
	Format   Format
	Tokens   int64
	Pages    int
	Bytes    int64
	Filename string
	Artifact *ArtifactRef
}

// Content is the Markdown payload a content source produced. Title, when
// set, names the document if the request and definition did not.
type Content struct {
	Title    string
	Markdown []byte
	Meta     map[string]any
}

// ContentRequest is passed to ContentSource.Fetch.
type ContentRequest struct {
	Definition ResolvedDefinition
	Request    DocumentRequest
	Spec       ContentSpec
	Actor      Actor
}

// ContentSource produces the Markdown body for a document.
type ContentSource interface {
	Fetch(ctx context.Context, req ContentRequest) (Content, error)
}

// TokenTransformer rewrites the parsed token stream before rendering.
type TokenTransformer interface {
	Transform(ctx context.Context, tokens []markdown.Token) ([]markdown.Token, error)
}

// RenderInput is everything a renderer needs for one document.
type RenderInput struct {
	Title       string
	Theme       string
	Tokens      []markdown.Token
	Source      []byte
	Meta        map[string]any
	GeneratedAt time.Time
}

// Renderer writes a document to the destination.
type Renderer interface {
	Render(ctx context.Context, input RenderInput, w io.Writer, opts RenderOptions) (RenderStats, error)
}

// RenderStats capture renderer output.
type RenderStats struct {
	Tokens int64
	Pages  int
	Bytes  int64
}

// PDFOptions configures paginated PDF output. ChromeSet distinguishes
// explicitly disabled page chrome from the unset zero value; decoders that
// accept include flags must set it.
type PDFOptions struct {
	PageSize     string
	Orientation  string
	FontSize     float64
	MarginTop    float64
	MarginBottom float64
	MarginLeft   float64
	MarginRight  float64

	IncludeHeader      bool
	IncludeFooter      bool
	IncludePageNumbers bool
	IncludeTOC         bool
	ChromeSet          bool
}

// TemplateOptions configures HTML template rendering.
type TemplateOptions struct {
	TemplateName string
	Layout       string
	Title        string
	GeneratedAt  time.Time
	Data         map[string]any
}

// FormatOptions configures locale/timezone formatting.
type FormatOptions struct {
	Locale   string
	Timezone string
}

// RenderOptions configures renderer behavior.
type RenderOptions struct {
	PDF      PDFOptions
	Template TemplateOptions
	Format   FormatOptions
}

// ArtifactMeta captures stored artifact metadata.
type ArtifactMeta struct {
	ContentType string
	Size        int64
	Filename    string
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

// ArtifactRef references a stored artifact.
type ArtifactRef struct {
	Key  string
	Meta ArtifactMeta
}

// ArtifactStore stores document artifacts.
type ArtifactStore interface {
	Put(ctx context.Context, key string, r io.Reader, meta ArtifactMeta) (ArtifactRef, error)
	Open(ctx context.Context, key string) (io.ReadCloser, ArtifactMeta, error)
	Delete(ctx context.Context, key string) error
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// ProgressDelta indicates progress changes. Total, when positive, sets the
// absolute expected token count rather than incrementing it.
type ProgressDelta struct {
	Tokens int64
	Bytes  int64
	Total  int64
}

// ProgressTracker tracks document progress.
type ProgressTracker interface {
	Start(ctx context.Context, record DocumentRecord) (string, error)
	Advance(ctx context.Context, id string, delta ProgressDelta, meta map[string]any) error
	SetState(ctx context.Context, id string, state DocumentState, meta map[string]any) error
	Fail(ctx context.Context, id string, err error, meta map[string]any) error
	Complete(ctx context.Context, id string, meta map[string]any) error
	Status(ctx context.Context, id string) (DocumentRecord, error)
	List(ctx context.Context, filter ProgressFilter) ([]DocumentRecord, error)
}

// CancelHook allows adapters to cancel running documents.
type CancelHook interface {
	Cancel(ctx context.Context, documentID string) error
}

// ArtifactTracker updates stored artifact metadata.
type ArtifactTracker interface {
	SetArtifact(ctx context.Context, id string, ref ArtifactRef) error
}

// RecordUpdater updates records outside state transitions.
type RecordUpdater interface {
	Update(ctx context.Context, record DocumentRecord) error
}

// RecordDeleter removes records from the tracker.
type RecordDeleter interface {
	Delete(ctx context.Context, id string) error
}

// ProgressFilter filters tracker lists.
type ProgressFilter struct {
	Definition string
	State      DocumentState
	Since      time.Time
	Until      time.Time
}

// Guard enforces authorization.
type Guard interface {
	AuthorizeDocument(ctx context.Context, actor Actor, req DocumentRequest, def ResolvedDefinition) error
	AuthorizeDownload(ctx context.Context, actor Actor, documentID string) error
}

// ActorProvider extracts the actor from context.
type ActorProvider interface {
	FromContext(ctx context.Context) (Actor, error)
}

// Logger provides logging hooks.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Errorf(format string, args ...any)
}

// ChangeEvent describes lifecycle events.
type ChangeEvent struct {
	Name       string
	DocumentID string
	Definition string
	Format     Format
	Delivery   DeliveryMode
	Actor      Actor
	Timestamp  time.Time
	Metadata   map[string]any
}

// ChangeEmitter emits lifecycle events.
type ChangeEmitter interface {
	Emit(ctx context.Context, evt ChangeEvent) error
}

// RouterRegistrar provides optional route registration.
type RouterRegistrar interface {
	RegisterRoutes(router any)
}

// QuotaHook enforces limits beyond per-definition policy.
type QuotaHook interface {
	Allow(ctx context.Context, actor Actor, req DocumentRequest, def ResolvedDefinition) error
}

// MetricsEvent describes lifecycle metrics.
type MetricsEvent struct {
	Name       string
	DocumentID string
	Definition string
	Format     Format
	Delivery   DeliveryMode
	Actor      Actor
	Tokens     int64
	Pages      int
	Bytes      int64
	Duration   time.Duration
	ErrorKind  ErrorKind
	Timestamp  time.Time
}

// MetricsHook emits metrics-friendly lifecycle observations.
type MetricsHook interface {
	Emit(ctx context.Context, evt MetricsEvent) error
}

// RetentionPolicy decides artifact TTLs.
type RetentionPolicy interface {
	TTL(ctx context.Context, actor Actor, req DocumentRequest, def ResolvedDefinition) (time.Duration, error)
}

// ResolvedDefinition is a definition with variant overrides applied.
type ResolvedDefinition struct {
	DocumentDefinition
	Variant string
}
