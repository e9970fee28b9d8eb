package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/cloudwego/eino/components/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tbxark/grainagent/agent"
	"github.com/tbxark/grainagent/cooking"
	"github.com/tbxark/grainagent/grainref"
	"github.com/tbxark/grainagent/metrics"
	"github.com/tbxark/grainagent/recommend"
	"github.com/tbxark/grainagent/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cm, err := newChatModel(ctx, cfg.LLM)
		if err != nil {
			return err
		}
		temperature := model.WithTemperature(cfg.LLM.Temperature)

		flow, err := agent.NewModelChatFlow(cm, cfg.LLM.Lang, temperature)
		if err != nil {
			return err
		}
		surveyRecommender, err := recommend.NewSurveyRecommender(cm, cfg.LLM.Lang, temperature)
		if err != nil {
			return err
		}

		catalog, err := openCatalog(cfg.Catalog)
		if err != nil {
			return err
		}
		cc := newCaches(cfg.Cache)
		defer func() { _ = cc.close() }()

		deps := server.Deps{
			Chat:     flow,
			Survey:   surveyRecommender,
			Registry: metrics.NewRegistry(),
		}
		cookingTemperature := model.WithTemperature(cfg.LLM.CookingTemperature)
		if catalog != nil {
			defer func() { _ = catalog.Close() }()
			deps.Recipes = catalog
			deps.Cooking = cooking.NewAnalyzer(cm, catalog, cfg.LLM.Lang, cookingTemperature)
			deps.Normalizer = grainref.NewNormalizer(catalog, cc.aliases)
		} else {
			deps.Cooking = cooking.NewAnalyzer(cm, nil, cfg.LLM.Lang, cookingTemperature)
			deps.Normalizer = grainref.NewNormalizer(nil, cc.aliases)
		}

		if err := server.New(deps).ListenAndServe(ctx, cfg.Server.Addr()); err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().String("host", "0.0.0.0", "listen host")
	serveCmd.Flags().Int("port", 8000, "listen port")
	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
}
