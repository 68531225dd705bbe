//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/omniluck/internal/bootstrap"
	"github.com/yanqian/omniluck/internal/domain/astrology"
	"github.com/yanqian/omniluck/internal/domain/celestial"
	"github.com/yanqian/omniluck/internal/domain/lottery"
	"github.com/yanqian/omniluck/internal/domain/luck"
	"github.com/yanqian/omniluck/internal/domain/narrative"
	"github.com/yanqian/omniluck/internal/domain/numerology"
	"github.com/yanqian/omniluck/internal/domain/signals"
	"github.com/yanqian/omniluck/internal/infra/config"
	"github.com/yanqian/omniluck/internal/infra/ephemeris"
	httpiface "github.com/yanqian/omniluck/internal/interface/http"
	"github.com/yanqian/omniluck/pkg/logger"
)

func initializeApp() (*bootstrap.App, func(), error) {
	wire.Build(
		config.Load,
		logger.New,
		provideTracing,
		ephemeris.New,
		wire.Bind(new(celestial.Ephemeris), new(*ephemeris.Meeus)),
		astrology.NewService,
		numerology.NewService,
		provideSignalsConfig,
		provideWeatherSource,
		provideGeomagneticSource,
		signals.NewService,
		provideLotteryConfig,
		provideGenerator,
		provideDrawSource,
		provideStatsStore,
		lottery.NewStatsService,
		provideValkeyClient,
		provideCache,
		provideNarrativeCache,
		provideResponseCache,
		provideChatClient,
		provideTokenCounter,
		provideNarrativeConfig,
		narrative.NewService,
		provideHistoryRepository,
		provideJobQueue,
		provideLuckJobQueue,
		provideLuckConfig,
		luck.NewService,
		provideAuthService,
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil, nil
}
