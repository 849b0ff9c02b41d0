package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	grpc_logging "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	grpc_recovery "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"

	"github.com/sagaforge/saga-api/internal/campaign"
	"github.com/sagaforge/saga-api/internal/clients/external"
	combatengine "github.com/sagaforge/saga-api/internal/combat"
	"github.com/sagaforge/saga-api/internal/config"
	"github.com/sagaforge/saga-api/internal/definitions"
	"github.com/sagaforge/saga-api/internal/ecs"
	"github.com/sagaforge/saga-api/internal/orchestrators/architect"
	"github.com/sagaforge/saga-api/internal/orchestrators/combat"
	"github.com/sagaforge/saga-api/internal/orchestrators/creator"
	"github.com/sagaforge/saga-api/internal/orchestrators/narrator"
	"github.com/sagaforge/saga-api/internal/orchestrators/tactical"
	"github.com/sagaforge/saga-api/internal/pkg/idgen"
	"github.com/sagaforge/saga-api/internal/pkg/roller"
	redisclient "github.com/sagaforge/saga-api/internal/redis"
	campaignrepo "github.com/sagaforge/saga-api/internal/repositories/campaign"
	entityrepo "github.com/sagaforge/saga-api/internal/repositories/entity"
	"github.com/sagaforge/saga-api/internal/repositories/hierarchy"
	questrepo "github.com/sagaforge/saga-api/internal/repositories/quest"
	"github.com/sagaforge/saga-api/internal/repositories/worldnode"
	"github.com/sagaforge/saga-api/internal/sim"
	"github.com/sagaforge/saga-api/internal/workflow"
	"github.com/sagaforge/saga-api/internal/world"
)

const (
	defaultGridCols = 100
	defaultGridRows = 100

	evolutionMatrixFile = "Evolution_Matrix.json"
)

var (
	grpcPort   int
	configPath string
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the engine server",
	Long:  `Start the saga engine with all configured surfaces: creator, tactical, combat lab, narrator, and architect.`,
	RunE:  runServer,
}

func init() {
	serverCmd.Flags().IntVar(&grpcPort, "port", 0, "gRPC server port (overrides config)")
	serverCmd.Flags().StringVar(&configPath, "config", "config.yaml", "path to the config file")
}

func runServer(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("Received shutdown signal, gracefully stopping...")
		cancel()
	}()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if grpcPort != 0 {
		cfg.Port = grpcPort
	}

	deps, err := buildDependencies(ctx, cfg)
	if err != nil {
		return err
	}

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Port))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			grpc_logging.UnaryServerInterceptor(grpc_logging.LoggerFunc(logFunc)),
			grpc_recovery.UnaryServerInterceptor(),
		),
		grpc.ChainStreamInterceptor(
			grpc_logging.StreamServerInterceptor(grpc_logging.LoggerFunc(logFunc)),
			grpc_recovery.StreamServerInterceptor(),
		),
	)

	// Register health service
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(srv, healthServer)

	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus("saga.api.v1alpha1.CreatorService", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus("saga.api.v1alpha1.TacticalService", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus("saga.api.v1alpha1.CombatService", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus("saga.api.v1alpha1.ArchitectService", grpc_health_v1.HealthCheckResponse_SERVING)
	narratorStatus := grpc_health_v1.HealthCheckResponse_NOT_SERVING
	if deps.narrator != nil {
		narratorStatus = grpc_health_v1.HealthCheckResponse_SERVING
	}
	healthServer.SetServingStatus("saga.api.v1alpha1.NarratorService", narratorStatus)

	reflection.Register(srv)

	errChan := make(chan error, 1)
	go func() {
		log.Printf("saga engine starting on port %d...", cfg.Port)
		if err := srv.Serve(lis); err != nil {
			errChan <- fmt.Errorf("failed to serve: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		log.Println("Shutting down server...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		stopped := make(chan struct{})
		go func() {
			srv.GracefulStop()
			close(stopped)
		}()

		select {
		case <-shutdownCtx.Done():
			log.Println("Graceful shutdown timeout exceeded, forcing stop")
			srv.Stop()
		case <-stopped:
			log.Println("Server stopped gracefully")
		}

		deps.close()
		return nil
	case err := <-errChan:
		deps.close()
		return err
	}
}

// dependencies is the fully wired engine. The orchestrator Services
// are the API surface; the gRPC shell above only carries health and
// reflection.
type dependencies struct {
	creator   creator.Service
	tactical  tactical.Service
	combat    combat.Service
	narrator  narrator.Service
	architect architect.Service

	redis redisclient.Client
	pool  *pgxpool.Pool
}

func (d *dependencies) close() {
	if d.pool != nil {
		d.pool.Close()
	}
	if d.redis != nil {
		if err := d.redis.Close(); err != nil {
			slog.Warn("failed to close redis client", "error", err)
		}
	}
}

func buildDependencies(ctx context.Context, cfg *config.Config) (*dependencies, error) {
	deps := &dependencies{}

	client, err := redisclient.NewClient(cfg.RedisAddr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	deps.redis = client

	entityRepo, err := entityrepo.NewRedis(&entityrepo.RedisConfig{Client: client})
	if err != nil {
		return nil, fmt.Errorf("failed to create entity repository: %w", err)
	}
	campaignRepo, err := campaignrepo.NewRedis(&campaignrepo.RedisConfig{Client: client})
	if err != nil {
		return nil, fmt.Errorf("failed to create campaign repository: %w", err)
	}
	questRepo, err := questrepo.NewRedis(&questrepo.RedisConfig{Client: client})
	if err != nil {
		return nil, fmt.Errorf("failed to create quest repository: %w", err)
	}
	hierarchyRepo, err := hierarchy.NewRedis(&hierarchy.RedisConfig{Client: client})
	if err != nil {
		return nil, fmt.Errorf("failed to create hierarchy repository: %w", err)
	}
	nodeRepo, err := worldnode.NewRedis(&worldnode.RedisConfig{Client: client})
	if err != nil {
		return nil, fmt.Errorf("failed to create world node repository: %w", err)
	}

	matrix, err := ecs.LoadEvolutionMatrix(filepath.Join(cfg.DataDir, evolutionMatrixFile))
	if err != nil {
		slog.Warn("evolution matrix unavailable, characters get no evolution traits", "error", err)
		matrix = nil
	}

	registry, err := ecs.New(&ecs.Config{
		Repository:  entityRepo,
		IDGenerator: idgen.NewUUID("ent_"),
		Matrix:      matrix,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create entity registry: %w", err)
	}
	if loaded, err := registry.LoadAll(ctx); err != nil {
		slog.Warn("failed to load persisted entities", "error", err)
	} else {
		slog.Info("entity registry loaded", "entities", loaded)
	}

	defs, err := definitions.New(&definitions.Config{DataDir: cfg.DataDir})
	if err != nil {
		return nil, fmt.Errorf("failed to create definitions registry: %w", err)
	}
	if err := defs.LoadAll(ctx); err != nil {
		slog.Warn("failed to load world definitions", "error", err)
	}

	grid, err := world.LoadGridFile(cfg.GridPath)
	if err != nil {
		slog.Info("no painted world grid, starting blank", "path", cfg.GridPath)
		grid = world.NewGrid(defaultGridCols, defaultGridRows)
	}

	nodes, err := nodeRepo.ListAll(ctx, worldnode.ListAllInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to load world nodes: %w", err)
	}
	graph := world.NewGraph(nodes.Nodes)

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rnd := roller.NewSeeded(seed)

	settlements, err := sim.NewSettlementSystem(&sim.SettlementConfig{
		Registry:    registry,
		Definitions: defs,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create settlement system: %w", err)
	}
	clock, err := sim.NewManager(&sim.ManagerConfig{
		Graph:       graph,
		Settlements: settlements,
		Definitions: defs,
		Rand:        rnd,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create simulation manager: %w", err)
	}

	graphContext, err := campaign.NewGraphContext(graph)
	if err != nil {
		return nil, fmt.Errorf("failed to create graph context: %w", err)
	}
	generator, err := campaign.New(&campaign.Config{
		Repository: campaignRepo,
		Context:    graphContext,
		Rand:       rnd,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create campaign generator: %w", err)
	}
	quests, err := campaign.NewQuestManager(&campaign.QuestManagerConfig{
		Repository:  questRepo,
		IDGenerator: idgen.NewUUID("quest_"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create quest manager: %w", err)
	}
	if known, err := quests.Load(ctx); err != nil {
		slog.Warn("failed to load persisted quests", "error", err)
	} else {
		slog.Info("quest log loaded", "quests", known)
	}

	saves, err := external.NewSaveStore(&external.SaveStoreConfig{Dir: cfg.SavesDir})
	if err != nil {
		return nil, fmt.Errorf("failed to create save store: %w", err)
	}
	importer, err := external.NewWorldImporter(&external.WorldImporterConfig{
		Registry: registry,
		Graph:    graph,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create world importer: %w", err)
	}

	var history external.HistoryEngine
	if cfg.HistoryEngineBin != "" {
		engine, err := external.NewExecHistoryEngine(&external.ExecHistoryEngineConfig{
			BinPath: cfg.HistoryEngineBin,
			DataDir: cfg.DataDir,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create history engine: %w", err)
		}
		history = engine
	} else {
		slog.Info("history engine binary not configured, deep-history simulation disabled")
	}

	deps.combat, err = combat.NewOrchestrator(&combat.Config{
		Registry: registry,
		Saves:    saves,
		Roller:   rnd,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create combat orchestrator: %w", err)
	}
	deps.tactical, err = tactical.NewOrchestrator(&tactical.Config{
		Registry:         registry,
		Saves:            saves,
		Roller:           rnd,
		Clock:            clock,
		Campaign:         generator,
		DefaultCharacter: cfg.DefaultHero,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create tactical orchestrator: %w", err)
	}
	deps.creator, err = creator.NewOrchestrator(&creator.Config{
		Definitions: defs,
		Saves:       saves,
		DataDir:     cfg.DataDir,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create creator orchestrator: %w", err)
	}
	deps.architect, err = architect.NewOrchestrator(&architect.Config{
		Registry:    registry,
		Grid:        grid,
		GridPath:    cfg.GridPath,
		Hierarchy:   hierarchyRepo,
		Definitions: defs,
		Settlements: settlements,
		Clock:       clock,
		History:     history,
		Importer:    importer,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create architect orchestrator: %w", err)
	}

	deps.narrator, err = buildNarrator(ctx, cfg, deps, registry, graph, clock, quests, rnd)
	if err != nil {
		return nil, err
	}

	return deps, nil
}

// buildNarrator wires the LLM-backed turn pipeline. The narrator
// surface stays nil when no provider key is configured; every other
// surface runs without it.
func buildNarrator(
	ctx context.Context,
	cfg *config.Config,
	deps *dependencies,
	registry *ecs.Registry,
	graph *world.Graph,
	clock *sim.Manager,
	quests *campaign.QuestManager,
	rnd *roller.Seeded,
) (narrator.Service, error) {
	if cfg.OpenAIKey == "" {
		slog.Info("no narrative provider key configured, narrator surface disabled")
		return nil, nil
	}

	provider, err := external.NewOpenAIProvider(cfg.OpenAIKey, cfg.OpenAIModel,
		external.WithTimeout(cfg.TurnTimeout))
	if err != nil {
		return nil, fmt.Errorf("failed to create narrative provider: %w", err)
	}

	var retriever external.Retriever
	if cfg.PostgresDSN != "" {
		pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		deps.pool = pool

		embedder, err := external.NewOpenAIEmbedder(cfg.OpenAIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create embedder: %w", err)
		}
		retriever, err = external.NewPgRetriever(&external.PgRetrieverConfig{
			Pool:     pool,
			Embedder: embedder,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create lore retriever: %w", err)
		}
	} else {
		slog.Info("no postgres DSN configured, lore retrieval disabled")
	}

	memory, err := external.NewMemoryManager(&external.MemoryConfig{Provider: provider})
	if err != nil {
		return nil, fmt.Errorf("failed to create memory manager: %w", err)
	}

	// The field grid takes priority over the battle lab when both
	// have a live session.
	fieldEngine := tactical.ActiveEngine(deps.tactical)
	labEngine := combat.ActiveEngine(deps.combat)
	combatSource := workflow.CombatSource(func() *combatengine.Engine {
		if e := fieldEngine(); e != nil {
			return e
		}
		return labEngine()
	})

	pipeline, err := workflow.New(&workflow.Config{
		Provider:   provider,
		Registry:   registry,
		Roller:     rnd,
		Retriever:  retriever,
		Memory:     memory,
		Graph:      graph,
		Clock:      clock,
		Quests:     quests,
		Combat:     combatSource,
		ChaosLevel: cfg.ChaosLevel,
		LoreTopK:   cfg.LoreTopK,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create turn pipeline: %w", err)
	}

	svc, err := narrator.NewOrchestrator(&narrator.Config{
		Pipeline: pipeline,
		Registry: registry,
		Memory:   memory,
		Quests:   quests,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create narrator orchestrator: %w", err)
	}
	return svc, nil
}

func logFunc(ctx context.Context, level grpc_logging.Level, msg string, fields ...any) {
	log.Printf("[%v] %s %v", level, msg, fields)
}
