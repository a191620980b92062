package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/whoamimjg/chef-mike-ai-recipe-manager-sub002/modules/account"
	"github.com/whoamimjg/chef-mike-ai-recipe-manager-sub002/modules/plan"
	"github.com/whoamimjg/chef-mike-ai-recipe-manager-sub002/modules/recipe"
	"github.com/whoamimjg/chef-mike-ai-recipe-manager-sub002/modules/shoppinglist"
	"github.com/whoamimjg/chef-mike-ai-recipe-manager-sub002/modules/suggest"
	"github.com/whoamimjg/chef-mike-ai-recipe-manager-sub002/pkg/config"
	"github.com/whoamimjg/chef-mike-ai-recipe-manager-sub002/pkg/httpserver"
	"github.com/whoamimjg/chef-mike-ai-recipe-manager-sub002/pkg/identity"
	"github.com/whoamimjg/chef-mike-ai-recipe-manager-sub002/pkg/logger"
	"github.com/whoamimjg/chef-mike-ai-recipe-manager-sub002/pkg/pg"
	"github.com/whoamimjg/chef-mike-ai-recipe-manager-sub002/pkg/quota"
	"github.com/whoamimjg/chef-mike-ai-recipe-manager-sub002/pkg/redis"
)

type appConfig struct {
	Env          string `env:"APP_ENV" envDefault:"development"`
	PlansPath    string `env:"PLANS_PATH"` // optional YAML plan catalog, falls back to built-in plans
	RedisEnabled bool   `env:"REDIS_ENABLED" envDefault:"false"`
}

func main() {
	ctx := context.Background()

	var appCfg appConfig
	config.MustLoad(&appCfg)

	logOpts := []logger.Option{logger.WithProduction("chef-mike-api")}
	if appCfg.Env == "development" {
		logOpts = []logger.Option{logger.WithDevelopment("chef-mike-api")}
	}
	log := logger.New(logOpts...)
	logger.SetAsDefault(log)

	if err := run(ctx, appCfg, log); err != nil {
		log.ErrorContext(ctx, "server exited with error", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, appCfg appConfig, log *slog.Logger) error {
	var pgCfg pg.Config
	config.MustLoad(&pgCfg)

	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, pgCfg, log); err != nil {
		return err
	}

	healthchecks := []func(context.Context) error{pg.Healthcheck(pool)}

	if appCfg.RedisEnabled {
		var redisCfg redis.Config
		config.MustLoad(&redisCfg)

		redisClient, err := redis.Connect(ctx, redisCfg)
		if err != nil {
			return err
		}
		defer redisClient.Close()
		healthchecks = append(healthchecks, redis.Healthcheck(redisClient))
	}

	// Plan catalog: static configuration, loaded once. YAML when configured,
	// built-in defaults otherwise.
	var src quota.Source
	if appCfg.PlansPath != "" {
		src = quota.NewYAMLSource(appCfg.PlansPath)
	} else {
		src = quota.NewInMemSource(quota.DefaultPlans())
	}
	catalog, err := quota.NewCatalog(ctx, src)
	if err != nil {
		return err
	}

	accounts := account.NewStore(pool)
	recipes := recipe.NewStore(pool)
	shoppingLists := shoppinglist.NewStore(pool)

	counters := quota.NewRegistry()
	counters.Register(quota.ResourceRecipes, recipes.CountByAccount)
	counters.Register(quota.ResourceShoppingLists, shoppingLists.CountByAccount)

	gate := quota.NewService(catalog, counters, accounts.PlanResolver(), log)

	// Placeholder recommender until the AI provider is wired in.
	recommender := suggest.RecommenderFunc(func(ctx context.Context, _ []string) ([]suggest.Suggestion, error) {
		return []suggest.Suggestion{}, nil
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", httpserver.HealthCheckHandler(ctx, log))
	r.Get("/readyz", httpserver.HealthCheckHandler(ctx, log, healthchecks...))

	r.Group(func(r chi.Router) {
		r.Use(identity.Middleware)
		r.Mount("/plan", plan.Router(gate, log))
		r.Mount("/recipes", recipe.Router(recipes, gate, log))
		r.Mount("/shopping-lists", shoppinglist.Router(shoppingLists, gate, log))
		r.Mount("/suggestions", suggest.Router(recommender, gate, log))
	})

	var httpCfg httpserver.Config
	config.MustLoad(&httpCfg)

	srv := httpserver.NewFromConfig(httpCfg, httpserver.WithLogger(log))
	return srv.Run(ctx, r)
}
