// Package cli implements the command line driving adapter.
//
// Commands talk to the core exclusively through the driving ports held
// in package-level variables. Execute wires the real services from the
// persisted settings; tests inject fakes into the same variables.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/adapters/driven/ai"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/adapters/driven/config/file"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/adapters/driven/events"
	memoryindex "github.com/urbaniq-dev-2025/Orbit-Backend/internal/adapters/driven/index/memory"
	csvrender "github.com/urbaniq-dev-2025/Orbit-Backend/internal/adapters/driven/render/csv"
	htmlrender "github.com/urbaniq-dev-2025/Orbit-Backend/internal/adapters/driven/render/html"
	jsonrender "github.com/urbaniq-dev-2025/Orbit-Backend/internal/adapters/driven/render/json"
	markdownrender "github.com/urbaniq-dev-2025/Orbit-Backend/internal/adapters/driven/render/markdown"
	xlsxrender "github.com/urbaniq-dev-2025/Orbit-Backend/internal/adapters/driven/render/xlsx"
	memorystore "github.com/urbaniq-dev-2025/Orbit-Backend/internal/adapters/driven/storage/memory"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/adapters/driven/storage/postgres"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/adapters/driven/storage/sqlite"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/chunkers/semantic"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/classifiers/centroid"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/domain"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/ports/driven"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/ports/driving"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/services"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// Services used by the commands. Execute populates them from the
// composition root; tests replace them with fakes.
var (
	documentService  driving.DocumentService
	pipelineService  driving.PipelineOrchestrator
	graphService     driving.GraphService
	exportService    driving.ExportService
	exampleService   driving.ExampleService
	settingsService  driving.SettingsService
	schedulerService driving.Scheduler
	eventBus         driven.EventBus

	appSettings *domain.AppSettings
	store       *sqlite.Store
	pgStore     *postgres.Store
	aiServices  *ai.InitResult
)

// Global flags.
var (
	verbose    bool
	jsonOutput bool
	showEvents bool
)

// stopEventStream tears down the --events subscription after a run.
var stopEventStream func()

var rootCmd = &cobra.Command{
	Use:   "orbit",
	Short: "Turn project documents into requirement graphs",
	Long: `Orbit interprets unstructured project documents into versioned
requirement graphs: personas, modules, features, interactions and
requirements, validated for coverage, duplicates and contradictions,
and exported as deterministic scope artifacts.

Start with 'orbit submit <file>' and 'orbit process <doc-id>', then
inspect the result with 'orbit status' and 'orbit export'.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
		if showEvents {
			stopEventStream = startEventStream(cmd)
		}
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if stopEventStream != nil {
			stopEventStream()
			stopEventStream = nil
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Emit machine-readable JSON output")
	rootCmd.PersistentFlags().BoolVar(&showEvents, "events", false, "Stream lifecycle events to stderr")
}

// Execute wires the application services and runs the root command.
func Execute() error {
	if err := initServices(); err != nil {
		return fmt.Errorf("failed to initialise services: %w", err)
	}
	defer closeServices()

	return rootCmd.Execute()
}

// initServices builds the full service graph from persisted settings.
// It is a no-op when services are already present (tests inject fakes).
func initServices() error {
	if documentService != nil {
		return nil
	}

	configStore, err := file.NewConfigStore(os.Getenv("ORBIT_CONFIG_DIR"))
	if err != nil {
		return fmt.Errorf("opening config store: %w", err)
	}

	settingsSvc := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settingsService = settingsSvc

	settings, err := settingsSvc.Get()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	appSettings = settings

	aiServices = ai.InitAIServices(*settings)
	for _, warning := range aiServices.Warnings {
		logger.Warn("%s", warning)
	}

	dbPath := settings.Storage.DBPath
	if dbPath == "" {
		dbPath, err = defaultDBPath()
		if err != nil {
			return err
		}
	}
	store, err = sqlite.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}

	var exampleStore driven.ExampleStore = store.ExampleStore()
	var exampleIndex driven.ExampleIndex = memoryindex.NewIndex()
	switch settings.Storage.ExamplesBackend {
	case domain.ExamplesBackendPostgres:
		pgStore, err = postgres.NewStore(context.Background(), postgres.Config{
			ConnString: settings.Storage.PostgresDSN,
			Dimensions: domain.EmbeddingDimensions()[settings.Embedding.Model],
		})
		if err != nil {
			return fmt.Errorf("opening postgres example store: %w", err)
		}
		exampleStore = pgStore.ExampleStore()
		exampleIndex = pgStore.ExampleIndex()
	case domain.ExamplesBackendMemory:
		exampleStore = memorystore.NewExampleStore()
	case domain.ExamplesBackendSQLite:
		// Default pairing: sqlite corpus, in-memory index snapshot.
	}

	eventBus = events.NewBus(events.Config{})

	pipeline := settings.Pipeline
	embedder := aiServices.EmbeddingService
	chunker := semantic.New(embedder,
		semantic.WithSplitThreshold(pipeline.SplitThreshold),
		semantic.WithWindowSentences(pipeline.WindowSentences),
		semantic.WithMinChunkTokens(pipeline.MinChunkTokens),
		semantic.WithMaxChunkTokens(pipeline.MaxChunkTokens),
		semantic.WithTagThreshold(pipeline.RequirementTagThreshold),
		semantic.WithMinInputChars(pipeline.MinInputChars),
	)
	classifier := centroid.New(embedder,
		centroid.WithMarginThreshold(pipeline.DomainMarginThreshold),
	)

	taxonomy := file.NewTaxonomyStore(settings.Storage.TaxonomyPath)
	builder := services.NewGraphBuilder(
		aiServices.Generation, aiServices.Fallback, taxonomy, pipeline, settings.Generation.Strategy)
	promptStore, err := file.NewPromptStore("")
	if err != nil {
		return fmt.Errorf("opening prompt store: %w", err)
	}
	builder.SetPromptStore(promptStore)
	graphValidator := services.NewGraphValidator(embedder, pipeline)

	exampleService = services.NewExampleService(exampleStore, exampleIndex, embedder, pipeline)
	documentService = services.NewDocumentService(
		store.DocumentStore(), store.GraphStore(), store.ClarificationStore(),
		store.ArtifactStore(), eventBus, pipeline)
	pipelineService = services.NewPipelineService(
		store.DocumentStore(), store.GraphStore(), store.ClarificationStore(),
		chunker, classifier, exampleService, builder, graphValidator, eventBus, pipeline)
	graphService = services.NewGraphService(
		store.DocumentStore(), store.GraphStore(), store.ClarificationStore(),
		exampleService, builder, graphValidator, eventBus, pipeline)
	exportService = services.NewExportService(
		store.GraphStore(), store.ArtifactStore(), []driven.ExportRenderer{
			csvrender.New(),
			xlsxrender.New(),
			markdownrender.New(),
			htmlrender.New(),
			jsonrender.New(),
		}, eventBus)
	schedulerService = services.NewScheduler(
		settingsSvc.GetSchedulerConfig(), store.ScheduleStore(), documentService, exampleService)

	// The index snapshot lives in memory; rebuild it from the corpus.
	if err := exampleService.Reindex(context.Background()); err != nil {
		logger.Warn("Reindexing example corpus: %v", err)
	}

	return nil
}

// closeServices releases what initServices opened.
func closeServices() {
	if eventBus != nil {
		eventBus.Close()
	}
	if aiServices != nil {
		aiServices.Close()
	}
	if pgStore != nil {
		pgStore.Close()
	}
	if store != nil {
		if err := store.Close(); err != nil {
			logger.Warn("Closing database: %v", err)
		}
	}
}

// defaultDBPath returns the database location under the user directory.
func defaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".orbit", "orbit.db"), nil
}

// startEventStream mirrors bus events to stderr until the returned stop
// function is called.
func startEventStream(cmd *cobra.Command) func() {
	if eventBus == nil {
		return func() {}
	}

	ch, cancel := eventBus.Subscribe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for event := range ch {
			fmt.Fprintln(cmd.ErrOrStderr(), formatEvent(event))
		}
	}()

	return func() {
		cancel()
		<-done
	}
}

// formatEvent renders one event as a single log-style line with the
// payload keys in stable order.
func formatEvent(event domain.Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", event.At.Format("15:04:05"), event.Type)
	if event.DocID != "" {
		fmt.Fprintf(&b, " doc=%s", event.DocID)
	}

	keys := make([]string, 0, len(event.Payload))
	for k := range event.Payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%s", k, event.Payload[k])
	}
	return b.String()
}

// printJSON writes v as indented JSON for --json output.
func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
