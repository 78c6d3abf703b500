package main

import (
	"context"
	"errors"
	"os"
	"sync"

	"github.com/custodia-labs/doclabel/internal/adapters/driven/ai"
	"github.com/custodia-labs/doclabel/internal/adapters/driven/config/file"
	"github.com/custodia-labs/doclabel/internal/adapters/driven/oauth"
	"github.com/custodia-labs/doclabel/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/doclabel/internal/adapters/driving/cli"
	"github.com/custodia-labs/doclabel/internal/connectors/google"
	gdrive "github.com/custodia-labs/doclabel/internal/connectors/google/drive"
	"github.com/custodia-labs/doclabel/internal/connectors/workdrive"
	"github.com/custodia-labs/doclabel/internal/core/domain"
	"github.com/custodia-labs/doclabel/internal/core/ports/driven"
	"github.com/custodia-labs/doclabel/internal/core/ports/driving"
	"github.com/custodia-labs/doclabel/internal/core/services"
	"github.com/custodia-labs/doclabel/internal/extractors"
	"github.com/custodia-labs/doclabel/internal/logger"
)

// Google Drive link bases used when the API omits a link.
const (
	googleAppBase = "https://drive.google.com"
	googleAPIBase = "https://www.googleapis.com/drive/v3"
)

// bootstrap loads configuration and wires every service.
func bootstrap(ctx context.Context, opts cli.BootstrapOptions) (*cli.Services, error) {
	settings, err := file.LoadSettings(opts.ConfigPath, opts.ConfigExplicit, os.LookupEnv)
	if err != nil {
		return nil, err
	}
	roots, err := settings.CrawlRoots()
	if err != nil {
		return nil, err
	}

	taxonomy, err := loadTaxonomy(settings.TaxonomyPath)
	if err != nil {
		return nil, err
	}
	rules, err := loadRules(settings.RegexPath)
	if err != nil {
		return nil, err
	}
	prompts := file.NewPromptStore(file.DefaultPromptDir)

	store, err := sqlite.NewStore(settings.DBPath)
	if err != nil {
		return nil, err
	}
	docs := store.DocumentStore()

	tokens, drive, links, err := newDrive(ctx, settings)
	if err != nil {
		store.Close()
		return nil, err
	}

	assisted := &lazyAssisted{build: func(ctx context.Context) *services.AssistedClassifier {
		llm, err := ai.Connect(ctx, settings.LLM)
		if err != nil {
			logger.Warn("Assisted classification disabled: %v", err)
			llm = nil
		}
		return services.NewAssistedClassifier(docs, llm, prompts, taxonomy, services.AssistedConfig{
			MaxTokens:   settings.LLM.MaxTokens,
			Temperature: settings.LLM.Temperature,
		})
	}}

	crawler := services.NewCrawler(docs, drive, links)
	extraction := services.NewExtractionService(docs, drive, extractors.NewDefaultRegistry(), settings.ExcerptMaxChars)
	heuristic := services.NewHeuristicClassifier(docs, rules, taxonomy)

	return &cli.Services{
		Settings:  settings,
		Roots:     roots,
		Auth:      services.NewAuthService(tokens, tokens),
		Crawler:   crawler,
		Extractor: extraction,
		Heuristic: heuristic,
		Assisted:  assisted,
		Review:    services.NewReviewService(docs, taxonomy),
		Syncer:    services.NewTemplateSyncer(docs, drive, file.NewTemplateMarker(settings.TemplateMarker), taxonomy),
		Inventory: services.NewInventoryService(docs),
		Pipeline:  services.NewPipeline(crawler, extraction, heuristic, assisted),
		Close: func() error {
			return errors.Join(assisted.Close(), store.Close())
		},
	}, nil
}

// newDrive builds the token provider and drive client for the selected
// storage provider.
func newDrive(
	ctx context.Context, settings domain.Settings,
) (*oauth.TokenProvider, driven.RemoteDrive, services.LinkBases, error) {
	switch settings.Provider {
	case domain.StorageGoogleDrive:
		tokens := oauth.NewTokenProvider(settings.Google, oauth.GoogleTokenPath)
		svc, err := google.NewDriveService(ctx, tokens)
		if err != nil {
			return nil, nil, services.LinkBases{}, err
		}
		drive := gdrive.New(svc, settings.PageSize, nil)
		return tokens, drive, services.LinkBases{AppBase: googleAppBase, APIBase: googleAPIBase}, nil
	default:
		tokens := oauth.NewTokenProvider(settings.OAuth, oauth.ZohoTokenPath)
		client := workdrive.NewClient(settings.WorkDrive, settings.PageSize, tokens)
		links := services.LinkBases{AppBase: settings.WorkDrive.AppBase, APIBase: settings.WorkDrive.APIBase}
		return tokens, client, links, nil
	}
}

func loadTaxonomy(path string) (*domain.Taxonomy, error) {
	taxonomy, err := file.LoadTaxonomy(path)
	if errors.Is(err, os.ErrNotExist) {
		logger.Warn("No taxonomy at %s; labels are not checked against a vocabulary", path)
		return nil, nil
	}
	return taxonomy, err
}

func loadRules(path string) (*domain.RuleSet, error) {
	rules, err := file.LoadRules(path)
	if errors.Is(err, os.ErrNotExist) {
		logger.Warn("No heuristic rules at %s", path)
		return domain.NewRuleSet(), nil
	}
	return rules, err
}

// lazyAssisted defers model setup to the first classification so commands
// that never classify do not contact the provider.
type lazyAssisted struct {
	once       sync.Once
	build      func(ctx context.Context) *services.AssistedClassifier
	classifier *services.AssistedClassifier
}

var _ driving.Classifier = (*lazyAssisted)(nil)

func (l *lazyAssisted) Classify(ctx context.Context) (*driving.ClassifyReport, error) {
	l.once.Do(func() { l.classifier = l.build(ctx) })
	return l.classifier.Classify(ctx)
}

func (l *lazyAssisted) Close() error {
	if l.classifier == nil {
		return nil
	}
	return l.classifier.Close()
}
