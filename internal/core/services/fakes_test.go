package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/doclabel/internal/core/domain"
	"github.com/custodia-labs/doclabel/internal/core/ports/driven"
)

// --- fakeDrive ---

type metadataWrite struct {
	FileID     string
	TemplateID string
	Values     []domain.MetadataValue
}

// fakeDrive is an in-memory RemoteDrive keyed by folder id.
type fakeDrive struct {
	mu          sync.Mutex
	folders     map[string][]domain.RemoteItem
	files       map[string][]byte
	listErr     map[string]error
	downloadErr map[string]error
	updateErr   error
	createErr   error

	listed    []domain.FolderRef
	downloads []string
	created   []domain.TemplateDefinition
	writes    []metadataWrite
}

func newFakeDrive() *fakeDrive {
	return &fakeDrive{
		folders:     make(map[string][]domain.RemoteItem),
		files:       make(map[string][]byte),
		listErr:     make(map[string]error),
		downloadErr: make(map[string]error),
	}
}

func (d *fakeDrive) ListFolder(_ context.Context, folder domain.FolderRef, fn func(domain.RemoteItem) error) error {
	d.mu.Lock()
	d.listed = append(d.listed, folder)
	items := append([]domain.RemoteItem(nil), d.folders[folder.ID]...)
	err := d.listErr[folder.ID]
	d.mu.Unlock()
	if err != nil {
		return err
	}
	for _, item := range items {
		if err := fn(item); err != nil {
			return err
		}
	}
	return nil
}

func (d *fakeDrive) Download(_ context.Context, fileID string) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.downloads = append(d.downloads, fileID)
	if err := d.downloadErr[fileID]; err != nil {
		return nil, err
	}
	data, ok := d.files[fileID]
	if !ok {
		return nil, fmt.Errorf("%w: file %s", domain.ErrRemotePermanent, fileID)
	}
	return data, nil
}

func (d *fakeDrive) CreateTemplate(_ context.Context, def domain.TemplateDefinition) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.createErr != nil {
		return "", d.createErr
	}
	d.created = append(d.created, def)
	return fmt.Sprintf("tpl-%d", len(d.created)), nil
}

func (d *fakeDrive) UpdateMetadata(_ context.Context, fileID, templateID string, values []domain.MetadataValue) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.updateErr != nil {
		return d.updateErr
	}
	d.writes = append(d.writes, metadataWrite{FileID: fileID, TemplateID: templateID, Values: values})
	return nil
}

// --- fakeMarker ---

type fakeMarker struct {
	id      string
	saves   int
	loadErr error
}

func (m *fakeMarker) Load() (string, error) { return m.id, m.loadErr }

func (m *fakeMarker) Save(id string) error {
	m.id = id
	m.saves++
	return nil
}

// --- fakeExtractor ---

type fakeExtractor struct {
	exts []string
	text string
	err  error
	pan  any
}

func (e *fakeExtractor) Extensions() []string { return e.exts }

func (e *fakeExtractor) Extract(_ context.Context, data []byte) (string, error) {
	if e.pan != nil {
		panic(e.pan)
	}
	if e.err != nil {
		return "", e.err
	}
	if e.text != "" {
		return e.text, nil
	}
	return string(data), nil
}

// --- fakeLLM ---

type fakeLLM struct {
	replies  []string
	errs     []error
	calls    int
	messages [][]driven.ChatMessage
	opts     []driven.ChatOptions
}

func (l *fakeLLM) Chat(_ context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	i := l.calls
	l.calls++
	l.messages = append(l.messages, messages)
	l.opts = append(l.opts, opts)
	if i < len(l.errs) && l.errs[i] != nil {
		return "", l.errs[i]
	}
	if i < len(l.replies) {
		return l.replies[i], nil
	}
	return "", fmt.Errorf("no reply scripted for call %d", i)
}

func (l *fakeLLM) ModelName() string            { return "fake-model" }
func (l *fakeLLM) Ping(_ context.Context) error { return nil }
func (l *fakeLLM) Close() error                 { return nil }

// --- fakePrompts ---

type fakePrompts struct{}

func (fakePrompts) Load(name string) (string, error) {
	switch name {
	case driven.PromptClassifySystem:
		return "Pick one value for each of {{fields}}.", nil
	case driven.PromptClassifyUser:
		return "Filename: {{filename}}\nExcerpt: {{excerpt}}\nCandidates: {{candidates}}", nil
	}
	return "", fmt.Errorf("unknown prompt %s", name)
}

func (fakePrompts) Reload() {}

// --- fakeTokens ---

type fakeTokens struct {
	token     string
	err       error
	status    domain.TokenStatus
	fetches   int
	exchanged []string
	refresh   string
}

func (f *fakeTokens) GetToken(_ context.Context) (string, error) {
	f.fetches++
	if f.err != nil {
		return "", f.err
	}
	f.status.Cached = true
	return f.token, nil
}

func (f *fakeTokens) Status() (domain.TokenStatus, error) { return f.status, nil }

func (f *fakeTokens) ExchangeCode(_ context.Context, code, redirectURI string) (string, error) {
	f.exchanged = append(f.exchanged, code+"|"+redirectURI)
	return f.refresh, nil
}

// sampleTaxonomy is a small vocabulary shared by the classifier tests.
func sampleTaxonomy() *domain.Taxonomy {
	return &domain.Taxonomy{
		DocTypes:     []string{"SOP", "Manual", "PCN", domain.OtherValue},
		ProductLines: []string{"Scrubbers", "Vacuums"},
		Models: []domain.NamedValues{
			{Name: "Scrubbers", Values: []string{"S50", "S1"}},
			{Name: "Vacuums", Values: []string{"V40"}},
		},
		SoftwareSeries: []domain.NamedValues{
			{Name: "aio", Values: []string{"AIO1", "AIO2"}},
		},
		SoftwareAllowOther: true,
		HardwareOptions:    []string{"4.2", "4.1"},
		HardwareAllowOther: true,
		Subsystems:         []string{"Laser", "Battery"},
		Audiences:          []string{"operator", "technician"},
		Priorities:         []string{"high", "normal", "low"},
		Lifecycles:         []string{"active", "retired"},
		Confidentiality:    []string{"internal", "public"},
	}
}

// sampleRules mirrors a small regex.yml.
func sampleRules() *domain.RuleSet {
	rules := domain.NewRuleSet()
	must := func(err error) {
		if err != nil {
			panic(err)
		}
	}
	must(rules.Add(domain.FieldDocType, "SOP", `\bSOP\b|standard operating`))
	must(rules.Add(domain.FieldDocType, "Manual", `manual|guide`))
	must(rules.Add(domain.FieldModel, "S50", `\bS50\b`))
	must(rules.Add(domain.FieldModel, "V40", `\bV40\b`))
	return rules
}

func ptr(s string) *string { return &s }
